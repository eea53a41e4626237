package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geniusclasses/geniusclasses/internal/auth"
	"github.com/geniusclasses/geniusclasses/internal/config"
	"github.com/geniusclasses/geniusclasses/internal/content"
	"github.com/geniusclasses/geniusclasses/internal/database"
	"github.com/geniusclasses/geniusclasses/internal/email"
	"github.com/geniusclasses/geniusclasses/internal/kv"
	"github.com/geniusclasses/geniusclasses/internal/notify"
	"github.com/geniusclasses/geniusclasses/internal/server"
	"github.com/geniusclasses/geniusclasses/internal/site"
	slackpkg "github.com/geniusclasses/geniusclasses/internal/slack"
	webhookpkg "github.com/geniusclasses/geniusclasses/internal/webhook"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func loadSite(path string) (*site.Data, error) {
	if path == "" {
		return site.Default(), nil
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site file: %w", err)
	}
	data, err := site.Parse(string(doc))
	if err != nil {
		return nil, fmt.Errorf("site file %s: %w", path, err)
	}
	return data, nil
}

// backend is the opened content store together with what the server needs
// to probe and release it.
type backend struct {
	repo        content.Repository
	pinger      server.Pinger
	deliveryLog webhookpkg.DeliveryLog
	close       func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn("using the in-memory store; content is lost on restart")
		return &backend{repo: content.NewKVRepository(kv.NewMemory()), close: func() {}}, nil

	case config.BackendSQLite:
		store, err := kv.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite store ready", "path", cfg.SQLitePath)
		return &backend{
			repo:   content.NewKVRepository(store),
			pinger: store,
			close:  func() { _ = store.Close() },
		}, nil

	case config.BackendS3:
		store, err := kv.NewS3(ctx, kv.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("storage initialization failed: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("storage bucket check failed: %w", err)
		}
		slog.Info("storage bucket ready", "bucket", cfg.S3.Bucket)
		return &backend{repo: content.NewKVRepository(store), pinger: store, close: func() {}}, nil

	case config.BackendPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		slog.Info("database migrations applied")
		return &backend{
			repo:        content.NewPostgresRepository(db.Pool),
			pinger:      db,
			deliveryLog: webhookpkg.PostgresLog{DB: db.Pool},
			close:       db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func serve(ctx context.Context, cfg config.Config) error {
	setupLogger(cfg.LogLevel)

	data, err := loadSite(cfg.SiteFile)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := openBackend(openCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer store.close()

	staff := notify.NewMulti(
		notify.Log{},
		email.New(email.Config{
			BaseURL:    cfg.Listmonk.URL,
			Username:   cfg.Listmonk.User,
			Password:   cfg.Listmonk.Password,
			TemplateID: cfg.Listmonk.TemplateID,
			InboxEmail: cfg.Listmonk.InboxEmail,
		}),
		slackpkg.New(cfg.SlackWebhookURL),
	)

	authHandler := auth.NewHandler(
		auth.Credentials{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash},
		cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookies,
	)
	authHandler.SetAlerts(staff)

	srvCfg := server.Config{
		Pinger:                store.pinger,
		Site:                  data,
		Repo:                  store.repo,
		Auth:                  authHandler,
		Inquiries:             staff,
		BaseURL:               cfg.BaseURL,
		AllowedFrameAncestors: cfg.AllowedFrameAncestors,
	}
	if cfg.WebhookURL != "" {
		hooks := webhookpkg.New(cfg.WebhookURL, cfg.WebhookSecret)
		if store.deliveryLog != nil {
			hooks.SetDeliveryLog(store.deliveryLog)
		}
		srvCfg.Publisher = hooks
		slog.Info("content webhooks enabled")
	}

	srv := server.New(srvCfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("geniusclasses listening", "addr", httpServer.Addr, "backend", cfg.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := srv.Drain(shutdownCtx); err != nil {
		slog.Warn("pending inquiries were not delivered", "error", err)
	}
	slog.Info("shutdown complete")
	return nil
}
