package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RemoveSelectors strips every element matching one of the exclude selectors
// from the HTML fragment. Parse or serialisation failures return the input
// unchanged; exclusion is best-effort and must never lose the page.
func RemoveSelectors(fragment string, excludeSelectors []string) string {
	if len(excludeSelectors) == 0 {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	for _, selector := range excludeSelectors {
		doc.Find(selector).Remove()
	}

	// goquery wraps fragments in html/body; serialise the body content so
	// the fragment stays a fragment.
	body := doc.Find("body")
	if body.Length() == 0 {
		return fragment
	}
	result, err := body.Html()
	if err != nil {
		return fragment
	}
	return result
}
