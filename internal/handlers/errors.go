// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"inksplash/internal/blob"
	"inksplash/internal/middleware"
	"inksplash/internal/orchestrator"
	"inksplash/internal/transform"
)

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	ErrorText string   `json:"error"`
	Details   string   `json:"details,omitempty"`
	Required  []string `json:"required,omitempty"`
	Received  []string `json:"received,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrInvalidRequest is returned for bodies that are not JSON objects.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{Err: err, HTTPStatusCode: http.StatusBadRequest, ErrorText: "Invalid request body", Details: err.Error()}
}

// ErrMissingFields lists the required fields and the keys that were sent.
func ErrMissingFields(received []string) render.Renderer {
	if received == nil {
		received = []string{}
	}
	return &ErrResponse{
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Missing required fields",
		Required:       transform.Required,
		Received:       received,
	}
}

// ErrIDRequired is returned when an endpoint needs a post id.
var ErrIDRequired = &ErrResponse{HTTPStatusCode: http.StatusBadRequest, ErrorText: "Post ID is required"}

// ErrNotFound is returned for unknown post ids.
var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, ErrorText: "Post not found"}

// errFor maps a mutation error to a response. received is the set of keys
// of the request body, used for validation failures.
func (a *API) errFor(r *http.Request, err error, received []string) render.Renderer {
	var ve *transform.ValidationError
	switch {
	case errors.As(err, &ve) && len(ve.Missing) > 0:
		return ErrMissingFields(received)
	case errors.Is(err, transform.ErrValidation):
		return &ErrResponse{Err: err, HTTPStatusCode: http.StatusBadRequest, ErrorText: "Invalid field values", Details: err.Error()}
	case errors.Is(err, orchestrator.ErrPostNotFound):
		return ErrNotFound
	case errors.Is(err, orchestrator.ErrConflict):
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusConflict,
			ErrorText:      "The blog document changed while saving, retry the request",
			Timestamp:      a.timestamp(),
		}
	case errors.Is(err, orchestrator.ErrClosed):
		return &ErrResponse{Err: err, HTTPStatusCode: http.StatusServiceUnavailable, ErrorText: "Server is shutting down"}
	}

	slog.Error("blog mutation failed",
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
		"error", err,
	)
	details := err.Error()
	if errors.Is(err, blob.ErrCredentialMissing) {
		details = "store credential not configured"
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		ErrorText:      "Internal server error",
		Details:        details,
		Timestamp:      a.timestamp(),
	}
}

// renderErr writes e and logs render failures.
func renderErr(w http.ResponseWriter, r *http.Request, e render.Renderer) {
	if err := render.Render(w, r, e); err != nil {
		slog.Error("render error response", "error", err)
	}
}
