package engine

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var reNoscript = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// emptyRoots are container markers typical of client-rendered SPA shells.
var emptyRoots = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
}

// needsBrowser decides whether HTTP-fetched HTML likely needs JS rendering
// (SPA shell, noscript warning, heavy script-to-text ratio).
func needsBrowser(doc string) bool {
	bodyText := extractVisibleText(doc)

	// Very little visible text in <body> suggests an SPA shell.
	if len(bodyText) < 200 {
		return true
	}

	lower := strings.ToLower(doc)

	for _, root := range emptyRoots {
		if strings.Contains(lower, root) {
			return true
		}
	}

	// <noscript> telling the visitor to enable JavaScript.
	if reNoscript.MatchString(lower) {
		return true
	}

	// Many <script> tags with little body text.
	if strings.Count(lower, "<script") > 10 && len(bodyText) < 500 {
		return true
	}

	return false
}

// extractTitle uses the HTML tokenizer to find the first <title> element.
func extractTitle(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}

// extractVisibleText collects the text inside <body>, skipping
// <script>/<style>/<noscript> content. Used by the heuristic only.
func extractVisibleText(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	var buf strings.Builder
	inBody := false
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "body" {
				inBody = true
			}
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if inBody && skipDepth == 0 {
				text := strings.TrimSpace(string(tokenizer.Text()))
				if text != "" {
					buf.WriteString(text)
					buf.WriteByte(' ')
				}
			}
		}
	}
}
