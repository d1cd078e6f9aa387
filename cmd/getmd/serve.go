package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/getmd/api"
	"github.com/use-agent/getmd/cache"
	"github.com/use-agent/getmd/cleaner"
	"github.com/use-agent/getmd/config"
	"github.com/use-agent/getmd/engine"
	"github.com/use-agent/getmd/scraper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fetch-and-convert pipeline as an HTTP API server",
	Long: `serve starts an HTTP server exposing POST /api/v1/fetch and
GET /api/v1/health. Configuration comes from GETMD_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log, os.Stdout)
	slog.Info("getmd server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	// ── 3. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.New(cfg.Browser, cfg.Fetcher)
	if err != nil {
		return err
	}
	defer sc.Close()

	// ── 3b. Fetch-mode dispatcher ───────────────────────────────────
	d := engine.NewDispatcher(
		engine.NewHTTPEngine(cfg.Browser.Proxy),
		engine.NewBrowserEngine(sc),
		cfg.Fetcher.MaxTimeout,
	)
	defer d.Stop()

	// ── 4. Cleaner and cache ────────────────────────────────────────
	cl := cleaner.New()
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Router and HTTP server ───────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(d, sc, cl, cfg, cc, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sc.Close() runs via defer and drains the page pool before killing Chrome.
	slog.Info("getmd server stopped")
	return nil
}
