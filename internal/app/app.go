// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package app wires configuration into a ready HTTP router: the store
// backend, the read chain, the orchestrator, the optional Valkey helpers
// and the router. It is shared by the server command and the serverless
// entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inksplash/internal/blob"
	"inksplash/internal/blob/filestore"
	"inksplash/internal/blob/github"
	"inksplash/internal/blob/memstore"
	"inksplash/internal/blob/pgstore"
	"inksplash/internal/blob/s3store"
	"inksplash/internal/cache"
	"inksplash/internal/config"
	"inksplash/internal/database"
	"inksplash/internal/fallback"
	"inksplash/internal/handlers"
	"inksplash/internal/metrics"
	"inksplash/internal/middleware"
	"inksplash/internal/orchestrator"
	"inksplash/internal/router"
	"inksplash/internal/static"
)

// App is a wired service. Close releases everything it opened.
type App struct {
	Config       *config.Config
	Store        blob.Store
	Loader       *fallback.Loader
	Orchestrator *orchestrator.Orchestrator
	Router       chi.Router

	closers []func()
}

// New builds the service described by cfg.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{Config: cfg}

	store, closeStore, err := OpenStore(cfg, cfg.StoreBackend)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, closeStore)

	a.Loader = fallback.NewLoader(cfg.HTTPTimeout, ReadChain(cfg, store, "")...)
	slog.Info("read chain configured", "sources", a.Loader.Sources())

	opts := []orchestrator.Option{orchestrator.WithObserver(metrics.ObserveTransition)}
	if cfg.SerializeWrites {
		opts = append(opts, orchestrator.WithSerializedWrites())
	}
	// Only the GitHub path is owned by someone else; local backends may
	// start without a document.
	if cfg.StoreBackend != config.BackendGitHub {
		opts = append(opts, orchestrator.WithCreateIfMissing())
	}
	a.Orchestrator = orchestrator.New(store, cfg.DefaultCategory, opts...)
	a.closers = append(a.closers, a.Orchestrator.Close)

	deps := handlers.Deps{
		Reader:       a.Loader,
		Writer:       a.Orchestrator,
		WriteRetries: cfg.WriteRetries,
		Diagnostics: handlers.Diagnostics{
			Environment:    cfg.Env,
			StoreBackend:   cfg.StoreBackend,
			StoreLocation:  Describe(cfg, store),
			Configured:     cfg.Presence(),
			SecretRequired: cfg.N8NWebhookSecret != "",
		},
	}

	if cfg.ValkeyEnabled() {
		vc, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			// Valkey only refines behavior; serve without it.
			slog.Warn("valkey unavailable, view dedupe disabled", "error", err)
		} else {
			deps.Views = cache.NewViewGuard(vc, cache.DefaultViewWindow)
			a.closers = append(a.closers, func() { vc.Close() })
		}
	}

	limiter := middleware.NewRateLimiter(cfg.ViewRateLimit, time.Minute)
	a.closers = append(a.closers, limiter.Stop)

	a.Router = router.New(handlers.New(deps), router.Options{
		WebhookSecret: cfg.N8NWebhookSecret,
		ViewLimiter:   limiter,
		Metrics:       metrics.Handler(),
	})
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// OpenStore opens the named backend. The returned func releases it.
func OpenStore(cfg *config.Config, backend string) (blob.Store, func(), error) {
	noop := func() {}

	switch backend {
	case config.BackendGitHub:
		return GitHubClient(cfg), noop, nil

	case config.BackendFile:
		return filestore.New(cfg.StaticFallbackPath), noop, nil

	case config.BackendMemory:
		return memstore.NewWithContent(static.Blogs()), noop, nil

	case config.BackendPostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		if cfg.IsDev() {
			if err := database.Seed(db, cfg.StorePath(), static.Blogs()); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return pgstore.New(db, cfg.StorePath(), cfg.HTTPTimeout), func() { db.Close() }, nil

	case config.BackendS3:
		s, err := s3store.New(s3store.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Timeout:   cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", backend)
}

// GitHubClient returns the contents API client described by cfg.
func GitHubClient(cfg *config.Config) *github.Client {
	return github.New(github.Options{
		Token:   cfg.GitHubToken,
		Owner:   cfg.GitHubOwner,
		Repo:    cfg.GitHubRepo,
		Path:    cfg.GitHubPath,
		Branch:  cfg.GitHubBranch,
		APIURL:  cfg.GitHubAPIURL,
		RawURL:  cfg.GitHubRawURL,
		Timeout: cfg.HTTPTimeout,
	})
}

// ReadChain returns the fallback sources for store. proxyURL, when set,
// is tried first. The raw endpoint is used whenever the store is GitHub,
// and the on-disk static file unless the store already is that file.
func ReadChain(cfg *config.Config, store blob.Store, proxyURL string) []fallback.Source {
	o := fallback.ChainOptions{
		ProxyURL: proxyURL,
		Client:   &http.Client{Timeout: cfg.HTTPTimeout},
		Store:    store,
		FilePath: cfg.StaticFallbackPath,
	}
	if gh, ok := store.(*github.Client); ok {
		o.Raw = gh
	}
	if _, ok := store.(*filestore.Store); ok {
		o.FilePath = ""
	}
	return fallback.Chain(o)
}

// Describe names where store keeps the document, without credentials.
func Describe(cfg *config.Config, store blob.Store) string {
	switch s := store.(type) {
	case *github.Client:
		return s.Describe()
	case *filestore.Store:
		return s.Path()
	case *pgstore.Store:
		return "postgres:" + cfg.StorePath()
	case *s3store.Store:
		return "s3://" + cfg.S3Bucket + "/" + cfg.S3Key
	case *memstore.Store:
		return "memory"
	}
	return fmt.Sprintf("%T", store)
}

// Snapshot fetches the current document from store, for the CLI.
func Snapshot(ctx context.Context, store blob.Store) (blob.Snapshot, error) {
	snap, err := store.Fetch(ctx)
	if err != nil {
		return blob.Snapshot{}, fmt.Errorf("fetch %s: %w", fmt.Sprintf("%T", store), err)
	}
	return snap, nil
}
