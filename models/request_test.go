package models

import "testing"

func TestValidFetchMode(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"auto", true},
		{"http", true},
		{"browser", true},
		{"", true},
		{"xyz", false},
		{"Browser", false},
		{"auto ", false},
	}
	for _, tt := range tests {
		if got := ValidFetchMode(tt.mode); got != tt.want {
			t.Errorf("ValidFetchMode(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	req := &FetchRequest{URL: "https://example.com"}
	req.Defaults()

	if req.Timeout != 60 {
		t.Errorf("Timeout = %d, want 60", req.Timeout)
	}
	if req.Wait != 2 {
		t.Errorf("Wait = %d, want 2", req.Wait)
	}
	if req.FetchMode != FetchModeAuto {
		t.Errorf("FetchMode = %q, want %q", req.FetchMode, FetchModeAuto)
	}

	// Explicit values survive.
	req = &FetchRequest{URL: "https://example.com", Timeout: 30, Wait: 5, FetchMode: FetchModeHTTP}
	req.Defaults()
	if req.Timeout != 30 || req.Wait != 5 || req.FetchMode != FetchModeHTTP {
		t.Errorf("Defaults overwrote explicit values: %+v", req)
	}
}
