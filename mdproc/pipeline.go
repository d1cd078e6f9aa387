// Package mdproc post-processes Markdown produced by HTML conversion. It
// rewrites relative link and image destinations into absolute URLs against
// the page URL and compacts redundant whitespace in tables, leaving fenced
// code blocks byte-for-byte intact.
//
// The package deliberately avoids building a Markdown AST: only link, image
// and table constructs are reinterpreted, and everything else must pass
// through unchanged. Every malformed input degrades to "leave unchanged";
// the pipeline never fails.
package mdproc

import (
	"net/url"
	"strings"
)

// Process runs the full pipeline: fence classification once, then the link
// resolution pass, then the table compaction pass over its result. Both
// passes reuse the same fence tags, since neither pass adds or removes
// lines. Deterministic with no side effects; a trailing newline is neither
// added nor assumed.
func Process(markdown, baseURL string) string {
	lines := strings.Split(markdown, "\n")
	inside := classifyFences(lines)
	if base := parseBase(baseURL); base != nil {
		lines = resolveLinkLines(lines, inside, base)
	}
	lines = compactTableLines(lines, inside)
	return strings.Join(lines, "\n")
}

// ResolveLinks runs only the link resolution pass. When baseURL is not an
// absolute URL the input is returned unchanged.
func ResolveLinks(markdown, baseURL string) string {
	base := parseBase(baseURL)
	if base == nil {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	return strings.Join(resolveLinkLines(lines, classifyFences(lines), base), "\n")
}

// CompactTables runs only the table compaction pass.
func CompactTables(markdown string) string {
	lines := strings.Split(markdown, "\n")
	return strings.Join(compactTableLines(lines, classifyFences(lines)), "\n")
}

// parseBase accepts only an absolute base URL; anything else disables
// resolution entirely rather than producing bogus rewrites.
func parseBase(baseURL string) *url.URL {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil
	}
	return base
}
