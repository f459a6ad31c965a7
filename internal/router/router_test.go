// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the dual /x and /api/x mounting.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"inksplash/internal/blob/memstore"
	"inksplash/internal/fallback"
	"inksplash/internal/handlers"
	"inksplash/internal/metrics"
	"inksplash/internal/middleware"
	"inksplash/internal/orchestrator"
	"inksplash/internal/static"
)

func newTestRouter(t *testing.T, opts Options) chi.Router {
	t.Helper()
	store := memstore.NewWithContent(static.Blogs())
	orch := orchestrator.New(store, "anime")
	t.Cleanup(orch.Close)

	api := handlers.New(handlers.Deps{
		Reader: fallback.NewLoader(time.Second, &fallback.StoreSource{Store: store}),
		Writer: orch,
	})
	return New(api, opts)
}

func do(h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRoutesServedAtBothPrefixes(t *testing.T) {
	r := newTestRouter(t, Options{})

	paths := []string{"/health", "/test", "/env-check", "/blogs", "/get-blogs", "/add-blog", "/n8n-webhook"}
	for _, p := range paths {
		for _, prefix := range []string{"", "/api"} {
			t.Run(prefix+p, func(t *testing.T) {
				rr := do(r, http.MethodGet, prefix+p, "", nil)
				if rr.Code != http.StatusOK {
					t.Errorf("GET %s%s: got %d, want 200", prefix, p, rr.Code)
				}
				if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
					t.Errorf("content-type: got %q", ct)
				}
			})
		}
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, Options{})
	rr := do(r, http.MethodGet, "/health", "", nil)

	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing secure headers")
	}
}

func TestPreflight(t *testing.T) {
	r := newTestRouter(t, Options{})
	for _, p := range []string{"/api/blogs", "/n8n-webhook", "/anything"} {
		rr := do(r, http.MethodOptions, p, "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("OPTIONS %s: got %d, want 200", p, rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("OPTIONS %s: missing Allow-Origin", p)
		}
	}
}

func TestWriteRoutes(t *testing.T) {
	r := newTestRouter(t, Options{})
	body := `{"title":"Route test","content":"Body"}`

	for _, p := range []string{"/api/blogs", "/blogs", "/api/add-blog", "/post-blog"} {
		rr := do(r, http.MethodPost, p, body, nil)
		if rr.Code != http.StatusCreated {
			t.Errorf("POST %s: got %d: %s", p, rr.Code, rr.Body.String())
		}
	}

	if rr := do(r, http.MethodDelete, "/api/blogs?id=3", "", nil); rr.Code != http.StatusOK {
		t.Errorf("DELETE: got %d", rr.Code)
	}
	if rr := do(r, http.MethodPost, "/api/increment-view", `{"postId":"1"}`, nil); rr.Code != http.StatusOK {
		t.Errorf("increment-view: got %d", rr.Code)
	}
}

func TestWebhookSecretEnforced(t *testing.T) {
	r := newTestRouter(t, Options{WebhookSecret: "hook"})
	body := `{"title":"From n8n","content":"Body"}`

	if rr := do(r, http.MethodPost, "/api/n8n-webhook", body, nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("without secret: got %d, want 401", rr.Code)
	}
	if rr := do(r, http.MethodPost, "/api/n8n-webhook", body, map[string]string{"X-Webhook-Secret": "hook"}); rr.Code != http.StatusCreated {
		t.Errorf("with secret: got %d, want 201", rr.Code)
	}
	if rr := do(r, http.MethodGet, "/n8n-webhook", "", nil); rr.Code != http.StatusOK {
		t.Errorf("info: got %d, want 200", rr.Code)
	}
	if rr := do(r, http.MethodPost, "/webhook-test", `{}`, nil); rr.Code != http.StatusOK {
		t.Errorf("webhook-test: got %d, want 200", rr.Code)
	}
}

func TestViewRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	r := newTestRouter(t, Options{ViewLimiter: rl})

	if rr := do(r, http.MethodPost, "/increment-view", `{"postId":"1"}`, nil); rr.Code != http.StatusOK {
		t.Fatalf("first: got %d", rr.Code)
	}
	if rr := do(r, http.MethodPost, "/increment-view", `{"postId":"1"}`, nil); rr.Code != http.StatusTooManyRequests {
		t.Errorf("second: got %d, want 429", rr.Code)
	}
	if rr := do(r, http.MethodGet, "/blogs", "", nil); rr.Code != http.StatusOK {
		t.Errorf("reads must not be limited: got %d", rr.Code)
	}
}

func TestMetricsAndFallbacks(t *testing.T) {
	r := newTestRouter(t, Options{Metrics: metrics.Handler()})

	if rr := do(r, http.MethodGet, "/metrics", "", nil); rr.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rr.Code)
	}
	if rr := do(r, http.MethodGet, "/nope", "", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d, want 404", rr.Code)
	}
	if rr := do(r, http.MethodPut, "/api/blogs", "", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT: got %d, want 405", rr.Code)
	}
}
