package cleaner

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/getmd/models"
)

const pageURL = "https://example.com/docs/page.html"

func TestConvert_SingleFragment(t *testing.T) {
	c := New()
	res, err := c.Convert(
		[]string{`<h1>Title</h1><p>Some <a href="./other.html">link</a> text.</p>`},
		pageURL,
		Options{SelectorsApplied: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Markdown, "# Title") {
		t.Errorf("heading missing from output:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "https://example.com/docs/other.html") {
		t.Errorf("relative link not resolved:\n%s", res.Markdown)
	}
	if res.Tokens == 0 {
		t.Error("token estimate should be non-zero")
	}
}

func TestConvert_JoinsFragmentsWithThematicBreak(t *testing.T) {
	c := New()
	res, err := c.Convert(
		[]string{"<p>first</p>", "<p>second</p>"},
		pageURL,
		Options{SelectorsApplied: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Markdown, "---") {
		t.Errorf("fragments not separated by thematic break:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "first") || !strings.Contains(res.Markdown, "second") {
		t.Errorf("fragment content missing:\n%s", res.Markdown)
	}
}

func TestConvert_DedupsIdenticalFragments(t *testing.T) {
	c := New()
	res, err := c.Convert(
		[]string{"<p>same</p>", "<p>same</p>"},
		pageURL,
		Options{SelectorsApplied: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(res.Markdown, "same") != 1 {
		t.Errorf("duplicate fragment not removed:\n%s", res.Markdown)
	}
}

func TestConvert_AppliesSelectorsOnFullDocument(t *testing.T) {
	doc := `<html><body>
		<nav>navigation junk</nav>
		<article><p>the real content</p></article>
	</body></html>`

	c := New()
	res, err := c.Convert([]string{doc}, pageURL, Options{Selectors: []string{"article"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Markdown, "the real content") {
		t.Errorf("selected content missing:\n%s", res.Markdown)
	}
	if strings.Contains(res.Markdown, "navigation junk") {
		t.Errorf("unselected content leaked:\n%s", res.Markdown)
	}
}

func TestConvert_NoSelectorMatch(t *testing.T) {
	c := New()
	_, err := c.Convert(
		[]string{"<html><body><p>x</p></body></html>"},
		pageURL,
		Options{Selectors: []string{"#missing"}},
	)
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a FetchError", err)
	}
	if fe.Code != models.ErrCodeNoMatch {
		t.Errorf("Code = %s, want %s", fe.Code, models.ErrCodeNoMatch)
	}
}

func TestConvert_ExcludeSelectors(t *testing.T) {
	c := New()
	res, err := c.Convert(
		[]string{`<div><p>keep</p><div class="ad">buy now</div></div>`},
		pageURL,
		Options{SelectorsApplied: true, ExcludeSelectors: []string{".ad"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Markdown, "keep") {
		t.Errorf("kept content missing:\n%s", res.Markdown)
	}
	if strings.Contains(res.Markdown, "buy now") {
		t.Errorf("excluded content leaked:\n%s", res.Markdown)
	}
}

func TestConvert_CompactsTables(t *testing.T) {
	c := New()
	res, err := c.Convert(
		[]string{`<table>
			<tr><th>alpha</th><th>beta</th></tr>
			<tr><td>1</td><td>2</td></tr>
		</table>`},
		pageURL,
		Options{SelectorsApplied: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Markdown, "| alpha | beta |") {
		t.Errorf("table header not compacted:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "| - | - |") {
		t.Errorf("separator row not compacted:\n%s", res.Markdown)
	}
}

func TestConvert_EmptyInput(t *testing.T) {
	c := New()
	if _, err := c.Convert(nil, pageURL, Options{}); err == nil {
		t.Error("expected error for empty fragment list")
	}
}

func TestDedupFragments(t *testing.T) {
	got := dedupFragments([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedupFragments returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupFragments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
