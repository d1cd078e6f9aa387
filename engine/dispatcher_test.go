package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/getmd/models"
)

// stubEngine returns a canned result or error and counts its calls.
type stubEngine struct {
	name  string
	res   *Result
	err   error
	calls int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Fetch(ctx context.Context, req *models.FetchRequest) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

// staticDoc is long enough in visible text that needsBrowser says no.
var staticDoc = "<html><head><title>ok</title></head><body><p>" +
	strings.Repeat("static content ", 40) + "</p></body></html>"

const spaShell = `<html><head><title>app</title></head><body><div id="root"></div></body></html>`

func newTestRequest(mode string) *models.FetchRequest {
	req := &models.FetchRequest{URL: "https://example.com/page", FetchMode: mode}
	req.Defaults()
	req.FetchMode = mode
	return req
}

func TestDispatcherForcedModes(t *testing.T) {
	httpEng := &stubEngine{name: "http", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "http"}}
	browserEng := &stubEngine{name: "browser", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "browser"}}
	d := NewDispatcher(httpEng, browserEng, 300*time.Second)
	defer d.Stop()

	res, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeHTTP))
	if err != nil {
		t.Fatalf("http mode: %v", err)
	}
	if res.FetchMethod != "http" || browserEng.calls != 0 {
		t.Errorf("http mode used the browser (method=%s, browser calls=%d)", res.FetchMethod, browserEng.calls)
	}

	res, err = d.Fetch(context.Background(), newTestRequest(models.FetchModeBrowser))
	if err != nil {
		t.Fatalf("browser mode: %v", err)
	}
	if res.FetchMethod != "browser" || httpEng.calls != 1 {
		t.Errorf("browser mode touched the http engine (method=%s, http calls=%d)", res.FetchMethod, httpEng.calls)
	}
}

func TestDispatcherAutoStaysOnHTTPForStaticPages(t *testing.T) {
	httpEng := &stubEngine{name: "http", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "http"}}
	browserEng := &stubEngine{name: "browser", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "browser"}}
	d := NewDispatcher(httpEng, browserEng, 300*time.Second)
	defer d.Stop()

	res, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeAuto))
	if err != nil {
		t.Fatal(err)
	}
	if res.FetchMethod != "http" {
		t.Errorf("FetchMethod = %s, want http", res.FetchMethod)
	}
	if browserEng.calls != 0 {
		t.Errorf("browser engine called %d times, want 0", browserEng.calls)
	}
}

func TestDispatcherAutoEscalatesOnSPAShell(t *testing.T) {
	httpEng := &stubEngine{name: "http", res: &Result{Fragments: []string{spaShell}, FetchMethod: "http"}}
	browserEng := &stubEngine{name: "browser", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "browser"}}
	d := NewDispatcher(httpEng, browserEng, 300*time.Second)
	defer d.Stop()

	res, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeAuto))
	if err != nil {
		t.Fatal(err)
	}
	if res.FetchMethod != "browser" {
		t.Errorf("FetchMethod = %s, want browser", res.FetchMethod)
	}

	// The domain is now remembered, so the next auto fetch must go
	// straight to the browser.
	if _, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeAuto)); err != nil {
		t.Fatal(err)
	}
	if httpEng.calls != 1 {
		t.Errorf("http engine called %d times, want 1 (mode memory should skip it)", httpEng.calls)
	}
}

func TestDispatcherAutoEscalatesOnHTTPError(t *testing.T) {
	httpEng := &stubEngine{name: "http", err: errors.New("connection refused")}
	browserEng := &stubEngine{name: "browser", res: &Result{Fragments: []string{staticDoc}, FetchMethod: "browser"}}
	d := NewDispatcher(httpEng, browserEng, 300*time.Second)
	defer d.Stop()

	res, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeAuto))
	if err != nil {
		t.Fatal(err)
	}
	if res.FetchMethod != "browser" {
		t.Errorf("FetchMethod = %s, want browser", res.FetchMethod)
	}
}

func TestDispatcherForcedHTTPWrapsErrors(t *testing.T) {
	httpEng := &stubEngine{name: "http", err: errors.New("boom")}
	browserEng := &stubEngine{name: "browser"}
	d := NewDispatcher(httpEng, browserEng, 300*time.Second)
	defer d.Stop()

	_, err := d.Fetch(context.Background(), newTestRequest(models.FetchModeHTTP))
	var fe *models.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a FetchError", err)
	}
	if fe.Code != models.ErrCodeNavigation {
		t.Errorf("Code = %s, want %s", fe.Code, models.ErrCodeNavigation)
	}
	if browserEng.calls != 0 {
		t.Errorf("forced http mode must not fall back to the browser")
	}
}

func TestModeMemoryExpiry(t *testing.T) {
	m := NewModeMemory(10 * time.Millisecond)
	defer m.Stop()

	m.Set("example.com", models.FetchModeBrowser)
	if got := m.Get("example.com"); got != models.FetchModeBrowser {
		t.Fatalf("Get = %q, want browser", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := m.Get("example.com"); got != "" {
		t.Errorf("Get after expiry = %q, want empty", got)
	}
}
