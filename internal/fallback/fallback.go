// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package fallback loads the blog document for readers from an ordered
// list of sources. The first source that yields a well-formed document
// wins; when every source fails the caller still gets an empty document.
//
// Every call starts again from the first source.
package fallback

import (
	"context"
	"log/slog"
	"time"

	"inksplash/internal/metrics"
	"inksplash/internal/models"
)

// SourceEmpty names the result when no source produced a document.
const SourceEmpty = "empty"

// Source is one place the document can be read from.
type Source interface {
	Name() string
	Load(ctx context.Context) (models.Document, error)
}

// Result is the loaded document and the source it came from.
type Result struct {
	Document models.Document
	Source   string
}

// Loader tries its sources in order.
type Loader struct {
	sources []Source
	timeout time.Duration
}

// NewLoader returns a loader over sources. Each attempt is bounded by
// timeout.
func NewLoader(timeout time.Duration, sources ...Source) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{sources: sources, timeout: timeout}
}

// Sources returns the source names in order.
func (l *Loader) Sources() []string {
	names := make([]string, len(l.sources))
	for i, s := range l.sources {
		names[i] = s.Name()
	}
	return names
}

// Load never fails.
func (l *Loader) Load(ctx context.Context) Result {
	for _, src := range l.sources {
		if ctx.Err() != nil {
			break
		}
		doc, err := l.attempt(ctx, src)
		if err != nil {
			slog.Warn("fallback source failed", "source", src.Name(), "error", err)
			continue
		}
		return Result{Document: doc, Source: src.Name()}
	}

	slog.Error("all fallback sources failed, serving empty document", "sources", len(l.sources))
	return Result{Document: models.Empty(), Source: SourceEmpty}
}

func (l *Loader) attempt(ctx context.Context, src Source) (models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	doc, err := src.Load(ctx)
	metrics.FallbackAttempt(src.Name(), err, time.Since(start))
	return doc, err
}
