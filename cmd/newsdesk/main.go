// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/newsdesk-go/internal/auth"
	"github.com/olegiv/newsdesk-go/internal/cache"
	"github.com/olegiv/newsdesk-go/internal/config"
	"github.com/olegiv/newsdesk-go/internal/domain"
	"github.com/olegiv/newsdesk-go/internal/handler"
	"github.com/olegiv/newsdesk-go/internal/locale"
	"github.com/olegiv/newsdesk-go/internal/logging"
	"github.com/olegiv/newsdesk-go/internal/middleware"
	"github.com/olegiv/newsdesk-go/internal/persist"
	"github.com/olegiv/newsdesk-go/internal/persist/memstore"
	"github.com/olegiv/newsdesk-go/internal/persist/mongostore"
	"github.com/olegiv/newsdesk-go/internal/persist/redisstore"
	"github.com/olegiv/newsdesk-go/internal/persist/sqlitestore"
	"github.com/olegiv/newsdesk-go/internal/refresh"
	"github.com/olegiv/newsdesk-go/internal/render"
	"github.com/olegiv/newsdesk-go/internal/session"
	"github.com/olegiv/newsdesk-go/internal/summary"
	"github.com/olegiv/newsdesk-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "newsdesk - Skenderaj Live news portal\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_BACKEND          memory|sqlite|redis|mongo (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_DB_PATH          SQLite database path (default: ./data/newsdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_REFRESH          off|poll|push|nats (default: off)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  NEWSDESK_AI_API_KEY       Summarizer API key (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter, db, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			slog.Error("error closing backing store", "error", err)
		}
	}()
	slog.Info("backing store ready", "backend", cfg.Backend)

	verifier, err := auth.NewVerifier(cfg.PasswordScheme)
	if err != nil {
		return err
	}
	formatter, err := locale.New(cfg.Locale, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("creating formatter: %w", err)
	}
	renderer := render.New()

	// Change notification
	var (
		source   persist.Subscriber
		notifier domain.Notifier
	)
	switch cfg.Refresh {
	case config.RefreshPoll:
		poller := refresh.NewPoller(adapter, cfg.PollInterval, logger)
		defer poller.Stop()
		source = poller
	case config.RefreshPush:
		sub, ok := adapter.(persist.Subscriber)
		if !ok {
			return fmt.Errorf("backend %q cannot push changes", cfg.Backend)
		}
		source = refresh.NewPush(sub)
	case config.RefreshNATS:
		n, err := refresh.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, adapter, logger)
		if err != nil {
			return err
		}
		defer func() { _ = n.Close() }()
		source, notifier = n, n
	}

	store := domain.New(adapter, domain.Options{
		Verifier:  verifier,
		Formatter: formatter,
		Renderer:  renderer,
		Bootstrap: domain.Bootstrap{
			Username: cfg.BootstrapUsername,
			Name:     cfg.BootstrapName,
			Password: cfg.BootstrapPassword,
		},
		SeedNews: cfg.SeedNews,
		Notifier: notifier,
		Logger:   logger,
	})
	if err := store.Load(ctx); err != nil {
		if persist.IsPermissionDenied(err) {
			slog.Error("backing store refused access; check its credentials and access rules")
		}
		return fmt.Errorf("loading portal data: %w", err)
	}

	if source != nil {
		stopWatch, err := store.Watch(ctx, source)
		if err != nil {
			return fmt.Errorf("watching changes: %w", err)
		}
		defer stopWatch()
		slog.Info("change notification enabled", "mode", cfg.Refresh)
	}

	cacheOpts := cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.RedisPrefix + "cache:",
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	}
	// The Redis backend already holds a connection; share it.
	if rs, ok := adapter.(*redisstore.Store); ok {
		cacheOpts.Client = rs.Client()
	}
	summaryCache, err := cache.New(cacheOpts)
	if err != nil {
		return fmt.Errorf("creating summary cache: %w", err)
	}
	defer func() { _ = summaryCache.Close() }()
	summarizer := newSummarizer(cfg, summaryCache, logger)

	sm := session.New(db, cfg.IsDevelopment())
	h := handler.New(handler.Deps{
		Store:      store,
		Sessions:   sm,
		Summary:    summarizer,
		Renderer:   renderer,
		Version:    info,
		PageSize:   cfg.PageSize,
		RecentSize: cfg.RecentSize,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr: cfg.ServerAddr(),
		Handler: h.Router(handler.RouterConfig{
			Security: middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
			CSRF:     middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()),
			Metrics:  true,
		}),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openBackend opens the configured adapter. The returned *sql.DB is the
// SQLite handle when that backend is used, so sessions can share it.
func openBackend(ctx context.Context, cfg *config.Config) (persist.Adapter, *sql.DB, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		slog.Warn("using the in-memory backend; data is lost on restart")
		return memstore.New(), nil, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		s, err := sqlitestore.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s.DB(), nil
	case config.BackendRedis:
		opts := redisstore.DefaultOptions()
		opts.URL = cfg.RedisURL
		opts.Prefix = cfg.RedisPrefix
		s, err := redisstore.Open(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis store: %w", err)
		}
		return s, nil, nil
	case config.BackendMongo:
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// newSummarizer builds the summary service. Without an API key every
// request falls back to the excerpt.
func newSummarizer(cfg *config.Config, c cache.Cacher, logger *slog.Logger) *summary.Service {
	var completer summary.Completer
	if cfg.AIEnabled() {
		completer = summary.NewOpenAICompleter(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		slog.Info("summarizer enabled", "model", cfg.AIModel)
	} else {
		slog.Info("summarizer disabled; NEWSDESK_AI_API_KEY is not set")
	}

	return summary.New(completer, c, summary.Options{
		Timeout:   cfg.AITimeout,
		RateLimit: cfg.AIRateLimit,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger,
	})
}
