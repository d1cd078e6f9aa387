package mdproc

import (
	"strings"
	"testing"
)

func TestClassifyFences(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		want  []bool
	}{
		{
			"no fences",
			"a\nb\nc",
			[]bool{false, false, false},
		},
		{
			"simple backtick fence",
			"a\n```\ncode\n```\nb",
			[]bool{false, false, true, false, false},
		},
		{
			"tilde fence",
			"~~~\ncode\n~~~",
			[]bool{false, true, false},
		},
		{
			"unterminated fence",
			"a\n```\ncode\nmore",
			[]bool{false, false, true, true},
		},
		{
			"mismatched marker never closes",
			"```\n~~~\ncode\n```",
			[]bool{false, true, true, false},
		},
		{
			"shorter run does not close",
			"````\n```\ncode\n````",
			[]bool{false, true, true, false},
		},
		{
			"longer run closes",
			"```\ncode\n`````\nafter",
			[]bool{false, true, false, false},
		},
		{
			"indented fence markers",
			"  ```\ncode\n  ```",
			[]bool{false, true, false},
		},
		{
			"info string on opener",
			"```go\ncode\n```",
			[]bool{false, true, false},
		},
		{
			"two markers is not a fence",
			"``\ncode\n``",
			[]bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyFences(strings.Split(tt.doc, "\n"))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tags, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %v, want %v (doc %q)", i, got[i], tt.want[i], tt.doc)
				}
			}
		})
	}
}

func TestFenceMarker(t *testing.T) {
	if _, _, ok := fenceMarker("`` not enough"); ok {
		t.Error("two backticks must not open a fence")
	}
	m, n, ok := fenceMarker("   ````rest")
	if !ok || m != '`' || n != 4 {
		t.Errorf("got (%q, %d, %v), want ('`', 4, true)", m, n, ok)
	}
	m, n, ok = fenceMarker("~~~~~")
	if !ok || m != '~' || n != 5 {
		t.Errorf("got (%q, %d, %v), want ('~', 5, true)", m, n, ok)
	}
	if _, _, ok := fenceMarker("text ```"); ok {
		t.Error("marker must start the trimmed line")
	}
}
