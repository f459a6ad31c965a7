// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/render"

	"inksplash/internal/middleware"
	"inksplash/internal/transform"
)

// maxEchoBody caps the body echoed by the webhook test endpoint.
const maxEchoBody = 64 << 10

// N8NWebhook adds a post sent by the automation workflow. The shared
// secret is checked by middleware.WebhookSecret.
func (a *API) N8NWebhook(w http.ResponseWriter, r *http.Request) {
	a.create(w, r, transform.ProfileWebhook, "Blog post added successfully via n8n webhook")
}

// N8NWebhookInfo describes the ingestion endpoint.
func (a *API) N8NWebhookInfo(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{
		"message":        "n8n webhook endpoint is ready",
		"method":         http.MethodPost,
		"secretRequired": a.diag.SecretRequired,
		"secretHeaders":  []string{middleware.WebhookSecretHeader, middleware.AltWebhookSecretHeader},
		"requiredFields": transform.Required,
		"optionalFields": []string{"id", "description", "category", "readTime", "publishDate", "views", "tags", "featured", "slug", "excerpt", "author", "thumbnail"},
		"timestamp":      a.timestamp(),
	})
}

// redactedHeaders are never echoed back. Keys are canonical header names.
var redactedHeaders = map[string]bool{
	"Authorization":        true,
	"Cookie":               true,
	"X-N8n-Webhook-Secret": true,
	"X-Webhook-Secret":     true,
}

// WebhookTest echoes the request so a workflow author can inspect what
// their tool sends. Credentials are redacted.
func (a *API) WebhookTest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEchoBody))
	if err != nil {
		renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	var body any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = string(raw)
		}
	}

	headers := make(map[string]string, len(r.Header))
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if redactedHeaders[name] {
			headers[name] = "[redacted]"
			continue
		}
		headers[name] = strings.Join(r.Header.Values(name), ", ")
	}

	render.JSON(w, r, render.M{
		"success":   true,
		"message":   "Webhook test received",
		"method":    r.Method,
		"path":      r.URL.Path,
		"query":     r.URL.Query(),
		"headers":   headers,
		"body":      body,
		"timestamp": a.timestamp(),
	})
}
