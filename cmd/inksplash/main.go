// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Ink Splash blog API. The serve
// command runs the HTTP server; the remaining commands are operator tools
// that share the same configuration.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"inksplash/internal/config"
)

var (
	jsonLogs bool

	rootCmd = &cobra.Command{
		Use:   "inksplash",
		Short: "Blog API backed by a single JSON document",
		Long: `inksplash serves and edits a blog whose posts live in one JSON
document, stored in a GitHub repository or a local backend.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(jsonLogs)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", os.Getenv("LOG_FORMAT") == "json", "Write logs as JSON instead of text")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(envCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs the default slog logger. Logs go to stderr so the
// tool commands can print documents on stdout.
func setupLogger(asJSON bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if asJSON {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// loadConfig loads and validates configuration from the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
