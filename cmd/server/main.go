// Package main is the entry point for the control tower server binary.
// It loads configuration, wires the warehouse client, cache, services, and
// chat runner, and serves the REST API plus the built frontend over HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"scctower/internal/api"
	"scctower/internal/app"
	"scctower/internal/config"
	"scctower/internal/middleware"
	"scctower/internal/web"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present); real environment variables win.
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	logger.Info("starting control tower backend",
		"version", version,
		"schema", cfg.FullSchema(),
		"warehouse_id", cfg.WarehouseID,
		"chat_enabled", cfg.ChatEnabled(),
	)

	a, err := app.New(app.Deps{Cfg: cfg, Logger: logger, Version: version})
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: newRouter(cfg, a, time.Now()),
		// Warehouse statements can sit in the sync wait window, so the
		// write timeout is generous.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("control tower listening",
		"addr", cfg.ListenAddr,
		"url", "http://"+displayHostForListenAddr(cfg.ListenAddr),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newRouter assembles the middleware chain and mounts the API, health, and
// SPA routes.
func newRouter(cfg *config.Config, a *app.App, start time.Time) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Forwarded-Access-Token"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	r.Use(middleware.CacheControl)
	r.Use(middleware.ForwardedToken)

	r.Get("/health", api.Health(start))
	r.Mount("/api", a.Handler.Routes())

	// Everything else is the frontend: real files from the build output,
	// client-side routes falling back to index.html.
	if cfg.StaticDir != "" {
		r.NotFound(web.NewSPAHandler(cfg.StaticDir).ServeHTTP)
	}

	return r
}

// displayHostForListenAddr turns a listen address into something that can be
// pasted into a browser: wildcard and empty hosts map to localhost.
func displayHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
