// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handler is the serverless entry point. The platform calls
// Handler for every request under /api; the router is built once per
// instance and shared by later invocations.
package handler

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"inksplash/internal/app"
	"inksplash/internal/config"
)

var (
	once    sync.Once
	handler http.Handler
	initErr error
)

func initApp() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	a, err := app.New(cfg)
	if err != nil {
		initErr = err
		return
	}
	// The instance is frozen between invocations and never closed.
	handler = a.Router
}

// Handler serves one request.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(initApp)
	if initErr != nil {
		slog.Error("serverless init failed", "error", initErr)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error","timestamp":"` + time.Now().UTC().Format(time.RFC3339Nano) + `"}`))
		return
	}
	handler.ServeHTTP(w, r)
}
