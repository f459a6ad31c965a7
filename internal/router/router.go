// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// blog API. Every endpoint is served both at /x and at /api/x so the same
// binary can stand in for the serverless functions.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"inksplash/internal/handlers"
	"inksplash/internal/middleware"
)

// Options carry the optional router collaborators.
type Options struct {
	// WebhookSecret guards the ingestion endpoint when set.
	WebhookSecret string
	// ViewLimiter rate-limits increment-view per client when set.
	ViewLimiter *middleware.RateLimiter
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Group(func(r chi.Router) { mount(r, api, opts) })
	r.Route("/api", func(r chi.Router) { mount(r, api, opts) })

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, render.M{"error": "Not found", "path": r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, render.M{"error": "Method not allowed", "method": r.Method})
	})

	return r
}

// mount registers the API endpoints on r.
func mount(r chi.Router, api *handlers.API, opts Options) {
	r.Get("/health", api.Health)
	r.Get("/test", api.Test)
	r.Get("/env-check", api.EnvCheck)

	r.Route("/blogs", func(r chi.Router) {
		r.Get("/", api.GetBlogs)
		r.Post("/", api.CreateBlog)
		r.Delete("/", api.DeleteBlog)
	})
	r.Get("/get-blogs", api.GetBlogsEnvelope)

	r.Get("/add-blog", api.AddBlogInfo)
	r.Post("/add-blog", api.CreateBlog)
	r.Post("/post-blog", api.CreateBlog)

	r.Group(func(r chi.Router) {
		if opts.ViewLimiter != nil {
			r.Use(opts.ViewLimiter.Middleware)
		}
		r.Post("/increment-view", api.IncrementView)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.WebhookSecret(opts.WebhookSecret))
		r.Get("/n8n-webhook", api.N8NWebhookInfo)
		r.Post("/n8n-webhook", api.N8NWebhook)
	})
	r.Post("/webhook-test", api.WebhookTest)
}
