package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter creates a reusable, goroutine-safe Converter:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea and HTML comments.
//   - commonmark plugin: standard Markdown rendering (headings, lists, links,
//     code blocks, emphasis, blockquotes, etc.).
//   - table plugin: preserves table structure with minimal cell padding;
//     the padding that remains is squeezed out by the compaction pass anyway.
//
// Relative URLs are deliberately NOT resolved here (no WithDomain): the
// mdproc pass resolves them against the final page URL after redirects,
// which the converter doesn't know.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}
