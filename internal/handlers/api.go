// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP surface of the blog API. Reads
// go through the fallback chain and never fail for the full document;
// writes go through the orchestrator and surface every failure.
package handlers

import (
	"context"
	"time"

	"inksplash/internal/fallback"
	"inksplash/internal/orchestrator"
	"inksplash/internal/transform"
)

// Reader loads the document for readers.
type Reader interface {
	Load(ctx context.Context) fallback.Result
	Sources() []string
}

// Writer runs read-modify-write mutations.
type Writer interface {
	AddPost(ctx context.Context, in transform.Input, profile transform.Profile) (orchestrator.Result, error)
	DeletePost(ctx context.Context, id string) (orchestrator.Result, error)
	IncrementView(ctx context.Context, id string) (orchestrator.Result, error)
}

// ViewGuard deduplicates view increments per viewer.
type ViewGuard interface {
	First(ctx context.Context, postID, viewer string) bool
	Forget(ctx context.Context, postID, viewer string)
}

// Diagnostics describes the deployment for the env-check endpoint. It must
// never carry secret values.
type Diagnostics struct {
	Environment    string
	StoreBackend   string
	StoreLocation  string
	Configured     map[string]bool
	SecretRequired bool
}

// Deps are the collaborators of the API handlers. Views is optional.
type Deps struct {
	Reader       Reader
	Writer       Writer
	Views        ViewGuard
	WriteRetries int
	Diagnostics  Diagnostics
	Now          func() time.Time
}

// API groups the blog endpoint handlers.
type API struct {
	reader  Reader
	writer  Writer
	views   ViewGuard
	retries int
	diag    Diagnostics
	now     func() time.Time
}

// New creates the API handler group.
func New(d Deps) *API {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &API{
		reader:  d.Reader,
		writer:  d.Writer,
		views:   d.Views,
		retries: d.WriteRetries,
		diag:    d.Diagnostics,
		now:     now,
	}
}

// timestamp formats the current time the way every response body does.
func (a *API) timestamp() string {
	return a.now().UTC().Format(time.RFC3339Nano)
}

// mutate runs fn with the configured retry budget.
func (a *API) mutate(ctx context.Context, fn func(ctx context.Context) (orchestrator.Result, error)) (orchestrator.Result, error) {
	if a.retries > 0 {
		return orchestrator.Retry(ctx, a.retries, fn)
	}
	return fn(ctx)
}
