package mdproc

import "testing"

const testBase = "https://example.com/docs/en/page.md"

func TestResolveLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"relative link",
			"[link](./other.md)",
			"[link](https://example.com/docs/en/other.md)",
		},
		{
			"root relative link",
			"[link](/root/path)",
			"[link](https://example.com/root/path)",
		},
		{
			"parent relative link",
			"[link](../sibling.md)",
			"[link](https://example.com/docs/sibling.md)",
		},
		{
			"absolute url unchanged",
			"[link](https://other.com/page)",
			"[link](https://other.com/page)",
		},
		{
			"fragment only unchanged",
			"[link](#section)",
			"[link](#section)",
		},
		{
			"image url",
			"![alt](./img.png)",
			"![alt](https://example.com/docs/en/img.png)",
		},
		{
			"link with title",
			`[link](./page "Title")`,
			`[link](https://example.com/docs/en/page "Title")`,
		},
		{
			"tab before title",
			"[link](./page\t\"Title\")",
			"[link](https://example.com/docs/en/page\t\"Title\")",
		},
		{
			"apostrophe in path",
			"[link](./it's.md)",
			"[link](https://example.com/docs/en/it's.md)",
		},
		{
			"apostrophe in destination with title",
			`[x](https://example.com/a'b "t")`,
			`[x](https://example.com/a'b "t")`,
		},
		{
			"multiple links",
			"[a](./one) and [b](../two) and [c](https://abs.com/page)",
			"[a](https://example.com/docs/en/one) and [b](https://example.com/docs/two) and [c](https://abs.com/page)",
		},
		{
			"no links unchanged",
			"plain text",
			"plain text",
		},
		{
			"empty destination unchanged",
			"[link]()",
			"[link]()",
		},
		{
			"nested parens in url",
			"[wiki](/wiki/Lisp_(language))",
			"[wiki](https://example.com/wiki/Lisp_(language))",
		},
		{
			"query string",
			"[link](./page?q=test&a=1)",
			"[link](https://example.com/docs/en/page?q=test&a=1)",
		},
		{
			"fragment and query",
			"[link](./page?q=1#sec)",
			"[link](https://example.com/docs/en/page?q=1#sec)",
		},
		{
			"protocol relative",
			"[link](//cdn.example.com/img.png)",
			"[link](https://cdn.example.com/img.png)",
		},
		{
			"data url unchanged",
			"[img](data:image/png;base64,ABC)",
			"[img](data:image/png;base64,ABC)",
		},
		{
			"mailto unchanged",
			"[email](mailto:test@example.com)",
			"[email](mailto:test@example.com)",
		},
		{
			"bracketed relative with space",
			"[doc](<./my file.md>)",
			"[doc](<https://example.com/docs/en/my%20file.md>)",
		},
		{
			"bracketed relative with title",
			`[doc](<./my file.md> "Title")`,
			`[doc](<https://example.com/docs/en/my%20file.md> "Title")`,
		},
		{
			"bracketed absolute unchanged",
			"[doc](<https://other.com/path with space>)",
			"[doc](<https://other.com/path with space>)",
		},
		{
			"escaped space with title",
			`[a](./my\ file.md "Title")`,
			`[a](https://example.com/docs/en/my%20file.md "Title")`,
		},
		{
			"escaped parens resolved literally",
			`[x](\(a\)b)`,
			"[x](https://example.com/docs/en/(a)b)",
		},
		{
			"adjacent links",
			"[a](./x)[b](./y)",
			"[a](https://example.com/docs/en/x)[b](https://example.com/docs/en/y)",
		},
		{
			"link marker inside title",
			`[a](./one "literal ]( marker")[b](./two)`,
			`[a](https://example.com/docs/en/one "literal ]( marker")[b](https://example.com/docs/en/two)`,
		},
		{
			"paren inside quoted title",
			`[a](./one "title ) marker")`,
			`[a](https://example.com/docs/en/one "title ) marker")`,
		},
		{
			"image nested in link label",
			"[![alt](./badge.svg)](./target)",
			"[![alt](https://example.com/docs/en/badge.svg)](https://example.com/docs/en/target)",
		},
		{
			"unterminated construct unchanged",
			"[link](./no-close and more text",
			"[link](./no-close and more text",
		},
		{
			"unmatched bracket unchanged",
			"just a [ bracket",
			"just a [ bracket",
		},
		{
			"escaped opening bracket unchanged",
			`\[not a link](./x)`,
			`\[not a link](./x)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveLinks(tt.input, testBase)
			if got != tt.want {
				t.Errorf("ResolveLinks(%q)\n got  %q\n want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveLinksInvalidBase(t *testing.T) {
	input := "[link](./path)"
	if got := ResolveLinks(input, "not a url"); got != input {
		t.Errorf("invalid base must leave input unchanged, got %q", got)
	}
	if got := ResolveLinks(input, ""); got != input {
		t.Errorf("empty base must leave input unchanged, got %q", got)
	}
}

func TestResolveLinksSkipsFencedRegions(t *testing.T) {
	input := "[a](./x)\n```\n[b](./y)\n```\n[c](./z)"
	want := "[a](https://example.com/docs/en/x)\n```\n[b](./y)\n```\n[c](https://example.com/docs/en/z)"
	if got := ResolveLinks(input, testBase); got != want {
		t.Errorf("fenced link was touched:\n got  %q\n want %q", got, want)
	}
}

func TestParsePlainDestination(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantURL string
		wantOK  bool
	}{
		{"simple", "url)", "url", true},
		{"nested parens", "wiki/Lisp_(lang))", "wiki/Lisp_(lang)", true},
		{"no close paren", "no close paren", "", false},
		{"empty", ")", "", true},
		{"deeply nested", "a(b(c))d)", "a(b(c))d", true},
		{"escaped close paren", `foo\)bar)`, "foo)bar", true},
		{"escaped open paren", `foo\(bar)`, "foo(bar", true},
		{"escaped space", `a\ b "title")`, "a b", true},
		{"escaped space no title", `./my\ file.md)`, "./my file.md", true},
		{"even backslashes before space", `./path\\ "Title")`, `./path\\`, true},
		{"title only after whitespace", `https://e.com/a'b "t")`, "https://e.com/a'b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := parsePlain(tt.input, 0)
			if ok != tt.wantOK {
				t.Fatalf("parsePlain(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && c.urlText != tt.wantURL {
				t.Errorf("parsePlain(%q) url = %q, want %q", tt.input, c.urlText, tt.wantURL)
			}
		})
	}
}

func TestParseBracketedDestination(t *testing.T) {
	c, ok := parseDestination("<./my file.md> \"Title\")", 0)
	if !ok {
		t.Fatal("bracketed destination with title did not parse")
	}
	if !c.bracketed {
		t.Error("construct not marked bracketed")
	}
	if c.urlText != "./my file.md" {
		t.Errorf("urlText = %q, want %q", c.urlText, "./my file.md")
	}

	c, ok = parseDestination(`<a\>b>)`, 0)
	if !ok {
		t.Fatal("escaped > destination did not parse")
	}
	if c.urlText != "a>b" {
		t.Errorf("urlText = %q, want %q", c.urlText, "a>b")
	}

	if _, ok := parseDestination("<never closed", 0); ok {
		t.Error("unterminated bracketed destination must not parse")
	}
}
