// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"inksplash/internal/app"
	"inksplash/internal/blob"
	"inksplash/internal/config"
	"inksplash/internal/fallback"
	"inksplash/internal/models"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Print the document the read chain currently serves",
		Long: `fetch walks the same read chain as the API, starting with PROXY_URL
when it is set, and prints the resulting document on stdout.`,
		RunE: runFetch,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Copy the document from one store backend to another",
		RunE:  runMigrate,
	}

	routesCmd = &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP routes as Markdown",
		RunE:  runRoutes,
	}

	envCheckCmd = &cobra.Command{
		Use:   "env-check",
		Short: "Report which settings are configured, without their values",
		RunE:  runEnvCheck,
	}
)

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendGitHub, "Source backend ("+fmt.Sprint(config.Backends)+")")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendPostgres, "Destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Read both sides but do not write")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, closeStore, err := app.OpenStore(cfg, cfg.StoreBackend)
	if err != nil {
		return err
	}
	defer closeStore()

	loader := fallback.NewLoader(cfg.HTTPTimeout, app.ReadChain(cfg, store, cfg.ProxyURL)...)
	res := loader.Load(cmd.Context())

	out, err := models.EncodeDocument(res.Document)
	if err != nil {
		return err
	}
	slog.Info("document loaded", "source", res.Source, "posts", len(res.Document.Posts))
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateFrom == migrateTo {
		return fmt.Errorf("--from and --to are both %q", migrateFrom)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, closeSrc, err := app.OpenStore(cfg, migrateFrom)
	if err != nil {
		return fmt.Errorf("open %s: %w", migrateFrom, err)
	}
	defer closeSrc()

	dst, closeDst, err := app.OpenStore(cfg, migrateTo)
	if err != nil {
		return fmt.Errorf("open %s: %w", migrateTo, err)
	}
	defer closeDst()

	var (
		from blob.Snapshot
		to   blob.Snapshot
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		from, err = app.Snapshot(ctx, src)
		return err
	})
	g.Go(func() error {
		snap, err := dst.Fetch(ctx)
		if errors.Is(err, blob.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch %s: %w", migrateTo, err)
		}
		to = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	doc, err := models.DecodeDocument(from.Content)
	if err != nil {
		return fmt.Errorf("source document: %w", err)
	}
	content, err := models.EncodeDocument(doc)
	if err != nil {
		return err
	}

	slog.Info("migrating document",
		"from", app.Describe(cfg, src),
		"to", app.Describe(cfg, dst),
		"posts", len(doc.Posts),
		"replaces_existing", to.Revision != "",
	)
	if migrateDryRun {
		return nil
	}

	res, err := dst.Write(cmd.Context(), content, to.Revision, "Migrate blogs from "+migrateFrom)
	if err != nil {
		return fmt.Errorf("write %s: %w", migrateTo, err)
	}
	slog.Info("migration complete", "revision", res.Revision, "commit", res.Commit)
	return nil
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// The in-memory backend builds the same routes without touching a
	// real store.
	cfg.StoreBackend = config.BackendMemory
	cfg.ValkeyHost = ""

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(a.Router, docgen.MarkdownOpts{
		ProjectPath: "inksplash",
		Intro:       "Routes served by the inksplash blog API. Every endpoint is also mounted under /api.",
	}))
	return nil
}

func runEnvCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	report := map[string]any{
		"environment":  cfg.Env,
		"storeBackend": cfg.StoreBackend,
		"configured":   cfg.Presence(),
	}
	if err := cfg.Validate(); err != nil {
		report["errors"] = err.Error()
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
