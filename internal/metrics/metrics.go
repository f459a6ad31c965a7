// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics registers the Prometheus collectors of the service and
// exposes the /metrics handler.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inksplash/internal/orchestrator"
	"inksplash/internal/transform"
)

const namespace = "inksplash"

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Read-modify-write cycles by operation and outcome.",
	}, []string{"op", "outcome"})

	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of read-modify-write cycles.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})

	fallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fallback",
		Name:      "source_total",
		Help:      "Fallback chain source attempts by source and outcome.",
	}, []string{"source", "outcome"})

	fallbackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "fallback",
		Name:      "source_duration_seconds",
		Help:      "Time spent on each fallback chain source.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"source"})

	viewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "views",
		Name:      "requests_total",
		Help:      "View increment requests by outcome.",
	}, []string{"outcome"})
)

// ObserveTransition is an orchestrator.Observer recording terminal states.
func ObserveTransition(t orchestrator.Transition) {
	switch t.To {
	case orchestrator.StateCommitted:
		mutationsTotal.WithLabelValues(string(t.Op), "committed").Inc()
		cycleDuration.WithLabelValues(string(t.Op)).Observe(t.Elapsed.Seconds())
	case orchestrator.StateFailed:
		mutationsTotal.WithLabelValues(string(t.Op), Outcome(t.Err)).Inc()
		cycleDuration.WithLabelValues(string(t.Op)).Observe(t.Elapsed.Seconds())
	}
}

// Outcome labels a mutation error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, transform.ErrValidation):
		return "invalid"
	case errors.Is(err, orchestrator.ErrPostNotFound):
		return "not_found"
	case errors.Is(err, orchestrator.ErrConflict):
		return "conflict"
	case errors.Is(err, orchestrator.ErrFetch):
		return "fetch_error"
	default:
		return "write_error"
	}
}

// FallbackAttempt records one source attempt of the fallback chain.
func FallbackAttempt(source string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fallbackTotal.WithLabelValues(source, outcome).Inc()
	fallbackDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ViewRequest records the outcome of an increment-view request: counted,
// deduplicated, or an error class.
func ViewRequest(outcome string) {
	viewsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
