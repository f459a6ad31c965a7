// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/render"

	"inksplash/internal/models"
	"inksplash/internal/orchestrator"
	"inksplash/internal/transform"
)

// SourceHeader names the fallback source that served a read.
const SourceHeader = "X-Blog-Source"

// postRequest is the body of the write endpoints. Keys records the
// top-level keys that were sent.
type postRequest struct {
	transform.Input
	Keys []string `json:"-"`
}

func (p *postRequest) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	p.Keys = make([]string, 0, len(fields))
	for k := range fields {
		p.Keys = append(p.Keys, k)
	}
	sort.Strings(p.Keys)
	return json.Unmarshal(b, &p.Input)
}

func (p *postRequest) Bind(r *http.Request) error { return nil }

// bindPost decodes the request body. An empty body decodes to an empty
// request so the missing fields are reported.
func bindPost(r *http.Request) (*postRequest, error) {
	req := &postRequest{}
	if err := render.Bind(r, req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return req, nil
}

// postResponse is returned by a committed write.
type postResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Post       models.Post `json:"post"`
	TotalPosts int         `json:"totalPosts"`
	Commit     string      `json:"commit,omitempty"`
}

func (p *postResponse) Render(w http.ResponseWriter, r *http.Request) error { return nil }

// GetBlogs serves the whole document, or a single post when ?id= is set.
// The full document is always served, empty when every source failed.
func (a *API) GetBlogs(w http.ResponseWriter, r *http.Request) {
	res := a.reader.Load(r.Context())
	w.Header().Set(SourceHeader, res.Source)
	w.Header().Set("Cache-Control", "no-cache")

	if id := r.URL.Query().Get("id"); id != "" {
		i := res.Document.FindPost(id)
		if i < 0 {
			renderErr(w, r, ErrNotFound)
			return
		}
		render.JSON(w, r, res.Document.Posts[i])
		return
	}
	render.JSON(w, r, res.Document)
}

// getBlogsResponse is the envelope of the get-blogs endpoint.
type getBlogsResponse struct {
	Success   bool            `json:"success"`
	Data      models.Document `json:"data"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
}

// GetBlogsEnvelope serves the document wrapped in {success, data} with
// public cache headers.
func (a *API) GetBlogsEnvelope(w http.ResponseWriter, r *http.Request) {
	res := a.reader.Load(r.Context())
	w.Header().Set(SourceHeader, res.Source)
	w.Header().Set("Cache-Control", "public, max-age=30, stale-while-revalidate=60")
	render.JSON(w, r, getBlogsResponse{
		Success:   true,
		Data:      res.Document,
		Source:    res.Source,
		Timestamp: a.timestamp(),
	})
}

// CreateBlog adds a post from the request body.
func (a *API) CreateBlog(w http.ResponseWriter, r *http.Request) {
	a.create(w, r, transform.ProfileAPI, "Blog post added successfully!")
}

func (a *API) create(w http.ResponseWriter, r *http.Request, profile transform.Profile, message string) {
	req, err := bindPost(r)
	if err != nil {
		renderErr(w, r, ErrInvalidRequest(err))
		return
	}

	// Report payload problems before touching the store.
	if _, err := transform.Normalize(req.Input, transform.Options{}); err != nil {
		renderErr(w, r, a.errFor(r, err, req.Keys))
		return
	}

	res, err := a.mutate(r.Context(), func(ctx context.Context) (orchestrator.Result, error) {
		return a.writer.AddPost(ctx, req.Input, profile)
	})
	if err != nil {
		renderErr(w, r, a.errFor(r, err, req.Keys))
		return
	}

	render.Status(r, http.StatusCreated)
	render.Render(w, r, &postResponse{
		Success:    true,
		Message:    message,
		Post:       res.Post,
		TotalPosts: res.TotalPosts,
		Commit:     res.Commit,
	})
}

// DeleteBlog removes the post named by ?id=.
func (a *API) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		renderErr(w, r, ErrIDRequired)
		return
	}

	res, err := a.mutate(r.Context(), func(ctx context.Context) (orchestrator.Result, error) {
		return a.writer.DeletePost(ctx, id)
	})
	if err != nil {
		renderErr(w, r, a.errFor(r, err, nil))
		return
	}

	render.Render(w, r, &postResponse{
		Success:    true,
		Message:    "Blog post deleted successfully",
		Post:       res.Post,
		TotalPosts: res.TotalPosts,
		Commit:     res.Commit,
	})
}

// AddBlogInfo answers GET on the add-blog endpoint with a short
// description of the write surface.
func (a *API) AddBlogInfo(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, render.M{
		"message":   "Blog API endpoint is working",
		"timestamp": a.timestamp(),
		"endpoints": render.M{
			"POST /api/add-blog":       "Add a new blog post",
			"GET /api/blogs":           "Get all blog posts",
			"GET /api/blogs?id=":       "Get a single blog post",
			"DELETE /api/blogs?id=":    "Delete a blog post",
			"POST /api/increment-view": "Increment the view count of a post",
			"POST /api/n8n-webhook":    "Add a blog post from an automation webhook",
		},
		"required": transform.Required,
	})
}
