// getmd fetches a URL, optionally rendering it in a headless browser, and
// converts selected elements to Markdown. The `serve` subcommand exposes the
// same pipeline as an HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/use-agent/getmd/cleaner"
	"github.com/use-agent/getmd/config"
	"github.com/use-agent/getmd/engine"
	"github.com/use-agent/getmd/models"
	"github.com/use-agent/getmd/progress"
	"github.com/use-agent/getmd/scraper"
)

var (
	flagSelectors   []string
	flagOutput      string
	flagChromePath  string
	flagWait        int
	flagTimeout     int
	flagNoHeadless  bool
	flagNoCache     bool
	flagStealth     bool
	flagReadability bool
	flagExclude     []string
	flagFetchMode   string
	flagQuiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "getmd <url>",
	Short: "Fetch a URL in a browser and convert selected elements to Markdown",
	Long: `getmd fetches a web page with headless Chrome (so JavaScript-rendered
pages work), extracts the elements matching your CSS selectors, and converts
them to compact Markdown with absolute links.

Examples:
  getmd https://example.com/docs
  getmd https://example.com -s article -s "div.changelog" -o page.md
  getmd https://example.com --fetch http --quiet`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFetch,
}

func init() {
	f := rootCmd.Flags()
	f.StringArrayVarP(&flagSelectors, "selector", "s", nil, "CSS selector for elements to convert (repeatable; whole page when omitted)")
	f.StringVarP(&flagOutput, "output", "o", "", "Output file path (stdout when omitted)")
	f.StringVar(&flagChromePath, "chrome-path", "", "Path to the Chrome binary (auto-detected when omitted)")
	f.IntVarP(&flagWait, "wait", "w", 2, "Extra wait in seconds after page load for JS rendering")
	f.IntVarP(&flagTimeout, "timeout", "t", 60, "Page load timeout in seconds")
	f.BoolVar(&flagNoHeadless, "no-headless", false, "Show the browser window (for debugging)")
	f.BoolVar(&flagNoCache, "no-cache", false, "Disable the browser cache (always fetch latest content)")
	f.BoolVar(&flagStealth, "stealth", false, "Enable anti-bot-detection evasions")
	f.BoolVar(&flagReadability, "readability", false, "Extract the main article when no selector is given")
	f.StringArrayVar(&flagExclude, "exclude", nil, "CSS selector to remove before conversion (repeatable)")
	f.StringVar(&flagFetchMode, "fetch", models.FetchModeBrowser, "Fetch mode: auto, http or browser")
	f.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	if !models.ValidFetchMode(flagFetchMode) {
		return fmt.Errorf("invalid fetch mode %q: must be auto, http or browser", flagFetchMode)
	}

	cfg := config.Load()

	// CLI flags override the environment.
	cfg.Browser.Headless = !flagNoHeadless
	if flagChromePath != "" {
		cfg.Browser.BrowserBin = flagChromePath
	}
	// Logs go to stderr so stdout stays clean for the Markdown. The CLI
	// keeps them at warn unless explicitly configured; progress output
	// covers the happy path.
	if os.Getenv("GETMD_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	initLogger(cfg.Log, os.Stderr)

	// Unset flags fall back to the environment (GETMD_WAIT, GETMD_TIMEOUT).
	if !cmd.Flags().Changed("wait") {
		flagWait = int(cfg.Fetcher.DefaultWait.Seconds())
	}
	if !cmd.Flags().Changed("timeout") {
		flagTimeout = int(cfg.Fetcher.DefaultTimeout.Seconds())
	}

	req := &models.FetchRequest{
		URL:              args[0],
		Selectors:        flagSelectors,
		Wait:             flagWait,
		Timeout:          flagTimeout,
		FetchMode:        flagFetchMode,
		Readability:      flagReadability,
		Stealth:          flagStealth,
		NoCache:          flagNoCache,
		ExcludeSelectors: flagExclude,
	}
	req.Defaults()

	prog := progress.New(!flagQuiet)

	// The browser is only launched when the fetch mode may need it.
	var browserEngine engine.Engine
	if req.FetchMode != models.FetchModeHTTP {
		prog.Spinner("Launching Chrome...")
		sc, err := scraper.New(cfg.Browser, cfg.Fetcher)
		if err != nil {
			prog.FinishAndClear()
			return err
		}
		defer sc.Close()
		browserEngine = engine.NewBrowserEngine(sc)
		prog.Finish("Chrome launched")
	}

	d := engine.NewDispatcher(engine.NewHTTPEngine(cfg.Browser.Proxy), browserEngine, cfg.Fetcher.MaxTimeout)
	defer d.Stop()

	prog.Spinner("Loading page: " + req.URL)
	result, err := d.Fetch(context.Background(), req)
	if err != nil {
		prog.FinishAndClear()
		return err
	}
	prog.Finish("Page loaded")

	prog.Spinner("Converting to Markdown...")
	converted, err := cleaner.New().Convert(result.Fragments, result.FinalURL, cleaner.Options{
		Selectors:        req.Selectors,
		SelectorsApplied: result.SelectorsApplied,
		ExcludeSelectors: req.ExcludeSelectors,
		Readability:      req.Readability,
	})
	if err != nil {
		prog.FinishAndClear()
		return err
	}
	prog.Finish("Converted to Markdown")

	if err := writeOutput(converted.Markdown, flagOutput); err != nil {
		return err
	}

	// Show completion with the URL only after output succeeds.
	prog.Complete(req.URL)
	return nil
}

// writeOutput writes the Markdown to the given file (creating parent
// directories, guaranteeing a trailing newline) or to stdout as-is.
func writeOutput(markdown, path string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, markdown)
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write output file %s: %w", path, err)
	}
	return nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig, w io.Writer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
