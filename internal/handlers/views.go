// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"inksplash/internal/metrics"
	"inksplash/internal/middleware"
	"inksplash/internal/orchestrator"
)

type viewRequest struct {
	PostID string `json:"postId"`
}

func (v *viewRequest) Bind(r *http.Request) error { return nil }

type viewResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	NewViewCount string `json:"newViewCount,omitempty"`
	PostTitle    string `json:"postTitle,omitempty"`
	PostID       string `json:"postId"`
	Counted      bool   `json:"counted"`
}

func (v *viewResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// IncrementView adds one view to the post named in the body. With a view
// guard configured a repeat view by the same client is acknowledged
// without a write.
func (a *API) IncrementView(w http.ResponseWriter, r *http.Request) {
	req := &viewRequest{}
	if err := render.Bind(r, req); err != nil && !errors.Is(err, io.EOF) {
		metrics.ViewRequest("invalid")
		renderErr(w, r, ErrInvalidRequest(err))
		return
	}
	if req.PostID == "" {
		metrics.ViewRequest("invalid")
		renderErr(w, r, ErrIDRequired)
		return
	}

	viewer := middleware.ClientIP(r)
	if a.views != nil && !a.views.First(r.Context(), req.PostID, viewer) {
		metrics.ViewRequest("deduplicated")
		render.Render(w, r, &viewResponse{
			Success: true,
			Message: "View already counted",
			PostID:  req.PostID,
		})
		return
	}

	res, err := a.mutate(r.Context(), func(ctx context.Context) (orchestrator.Result, error) {
		return a.writer.IncrementView(ctx, req.PostID)
	})
	if err != nil {
		if a.views != nil {
			a.views.Forget(r.Context(), req.PostID, viewer)
		}
		metrics.ViewRequest(metrics.Outcome(err))
		renderErr(w, r, a.errFor(r, err, nil))
		return
	}

	metrics.ViewRequest("counted")
	render.Render(w, r, &viewResponse{
		Success:      true,
		Message:      "View count updated successfully",
		NewViewCount: res.Post.Views,
		PostTitle:    res.Post.Title,
		PostID:       res.Post.ID,
		Counted:      true,
	})
}
