// getmd-mcp exposes the fetch-and-convert pipeline as an MCP stdio server,
// so agents can pull web pages as Markdown without shelling out to the CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/getmd/cleaner"
	"github.com/use-agent/getmd/config"
	"github.com/use-agent/getmd/engine"
	"github.com/use-agent/getmd/models"
	"github.com/use-agent/getmd/scraper"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	s := server.NewMCPServer(
		"getmd",
		models.Version,
		server.WithToolCapabilities(false),
	)

	fetchTool := mcp.NewTool("fetch_markdown",
		mcp.WithDescription("Fetch a web page and convert it to Markdown with absolute links and compact tables. Renders JavaScript-heavy pages in a headless browser when needed."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to fetch"),
		),
		mcp.WithArray("selectors",
			mcp.Description("CSS selectors for the elements to convert. When omitted, the whole page is used."),
		),
		mcp.WithBoolean("readability",
			mcp.Description("Extract the main article instead of the whole page (ignored when selectors are given)"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Fetch strategy: 'auto' (default, HTTP first with browser escalation), 'http', or 'browser'"),
			mcp.Enum("auto", "http", "browser"),
		),
	)

	s.AddTool(fetchTool, handleFetchMarkdown(cfg))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleFetchMarkdown(cfg *config.Config) server.ToolHandlerFunc {
	cl := cleaner.New()

	// Chrome is expensive; launch it on the first request that needs it
	// and keep it for the rest of the session.
	var (
		once    sync.Once
		disp    *engine.Dispatcher
		dispErr error
	)
	dispatcher := func() (*engine.Dispatcher, error) {
		once.Do(func() {
			sc, err := scraper.New(cfg.Browser, cfg.Fetcher)
			if err != nil {
				dispErr = err
				return
			}
			disp = engine.NewDispatcher(
				engine.NewHTTPEngine(cfg.Browser.Proxy),
				engine.NewBrowserEngine(sc),
				cfg.Fetcher.MaxTimeout,
			)
		})
		return disp, dispErr
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		fetchMode := request.GetString("fetch_mode", "")
		if !models.ValidFetchMode(fetchMode) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid fetch_mode %q: must be auto, http or browser", fetchMode)), nil
		}

		req := &models.FetchRequest{
			URL:         url,
			Selectors:   request.GetStringSlice("selectors", nil),
			Readability: request.GetBool("readability", false),
			FetchMode:   fetchMode,
		}
		req.Defaults()

		d, err := dispatcher()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to start browser: %v", err)), nil
		}

		result, err := d.Fetch(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fetchErrMessage(err)), nil
		}

		converted, err := cl.Convert(result.Fragments, result.FinalURL, cleaner.Options{
			Selectors:        req.Selectors,
			SelectorsApplied: result.SelectorsApplied,
			Readability:      req.Readability,
		})
		if err != nil {
			return mcp.NewToolResultError(fetchErrMessage(err)), nil
		}

		title := converted.Title
		if title == "" {
			title = result.Title
		}

		var sb strings.Builder
		if title != "" {
			sb.WriteString("Title: " + title + "\n")
		}
		sb.WriteString("Source: " + result.FinalURL + "\n\n")
		sb.WriteString(converted.Markdown)
		sb.WriteString(fmt.Sprintf("\n\n---\nTokens: ~%d", converted.Tokens))

		return mcp.NewToolResultText(sb.String()), nil
	}
}

// fetchErrMessage formats typed fetch errors as "[CODE] message".
func fetchErrMessage(err error) string {
	if fe, ok := err.(*models.FetchError); ok {
		return fmt.Sprintf("[%s] %s", fe.Code, fe.Message)
	}
	return err.Error()
}

// initLogger sends logs to stderr; stdout carries the MCP protocol.
func initLogger(cfg config.LogConfig) {
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
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
