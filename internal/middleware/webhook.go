// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// Headers that may carry the ingestion shared secret.
const (
	WebhookSecretHeader    = "X-N8N-Webhook-Secret"
	AltWebhookSecretHeader = "X-Webhook-Secret"
)

// WebhookSecret rejects requests whose shared secret header does not match
// secret. An empty secret disables the check. Only non-GET requests are
// checked so the endpoint info stays public.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(WebhookSecretHeader)
			if got == "" {
				got = r.Header.Get(AltWebhookSecretHeader)
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				slog.Warn("webhook secret mismatch",
					"path", r.URL.Path,
					"remote", ClientIP(r),
					"request_id", GetRequestID(r.Context()),
				)
				writeJSONError(w, http.StatusUnauthorized, map[string]any{
					"error": "Unauthorized: Invalid webhook secret",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
