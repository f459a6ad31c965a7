// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/render"
)

// Health is the liveness probe.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{"status": "ok", "timestamp": a.timestamp()})
}

// Test confirms the API is reachable.
func (a *API) Test(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{
		"message":   "API is working",
		"method":    r.Method,
		"timestamp": a.timestamp(),
	})
}

// EnvCheck reports which settings are present. Values are never included.
func (a *API) EnvCheck(w http.ResponseWriter, r *http.Request) {
	configured := a.diag.Configured
	if configured == nil {
		configured = map[string]bool{}
	}
	render.JSON(w, r, render.M{
		"environment":    a.diag.Environment,
		"storeBackend":   a.diag.StoreBackend,
		"storeLocation":  a.diag.StoreLocation,
		"configured":     configured,
		"readSources":    a.reader.Sources(),
		"viewGuard":      a.views != nil,
		"writeRetries":   a.retries,
		"secretRequired": a.diag.SecretRequired,
		"timestamp":      a.timestamp(),
	})
}
