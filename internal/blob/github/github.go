// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package github stores the document as a file in a GitHub repository,
// read and written through the Contents API. The file's blob sha is the
// revision token, so GitHub itself rejects writes based on a stale read.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inksplash/internal/blob"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRawURL = "https://raw.githubusercontent.com"

	acceptJSON = "application/vnd.github.v3+json"
	acceptRaw  = "application/vnd.github.raw"
	userAgent  = "inksplash-blog-store"
)

var _ blob.Store = &Client{}

// Options identify the file and how to reach it.
type Options struct {
	Token   string
	Owner   string
	Repo    string
	Path    string
	Branch  string
	APIURL  string
	RawURL  string
	Timeout time.Duration

	// HTTPClient overrides the default client. Its own timeout is left
	// alone; Timeout still bounds each call through the context.
	HTTPClient *http.Client
}

// Client implements blob.Store on top of the GitHub Contents API.
type Client struct {
	opts   Options
	client *http.Client
}

// New returns a client. Missing endpoints fall back to the public GitHub
// hosts and a zero timeout to ten seconds.
func New(opts Options) *Client {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.RawURL == "" {
		opts.RawURL = DefaultRawURL
	}
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	opts.RawURL = strings.TrimRight(opts.RawURL, "/")

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{opts: opts, client: hc}
}

// contentsResponse is the subset of the Contents API file object we use.
type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Fetch reads the file and decodes its base64 content.
func (c *Client) Fetch(ctx context.Context) (blob.Snapshot, error) {
	if c.opts.Token == "" {
		return blob.Snapshot{}, fmt.Errorf("github fetch: %w", blob.ErrCredentialMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodGet, c.contentsURL()+"?ref="+c.opts.Branch, acceptJSON, nil)
	if err != nil {
		return blob.Snapshot{}, fmt.Errorf("github fetch: %w", err)
	}

	var file contentsResponse
	if err := json.Unmarshal(body, &file); err != nil {
		return blob.Snapshot{}, fmt.Errorf("github fetch decode: %w: %v", blob.ErrMalformed, err)
	}

	var content []byte
	switch file.Encoding {
	case "none":
		// Files above 1 MB come back without inline content.
		content, err = c.do(ctx, http.MethodGet, c.contentsURL()+"?ref="+c.opts.Branch, acceptRaw, nil)
		if err != nil {
			return blob.Snapshot{}, fmt.Errorf("github fetch raw: %w", err)
		}
	default:
		content, err = DecodeContent(file.Content)
		if err != nil {
			return blob.Snapshot{}, fmt.Errorf("github fetch: %w", err)
		}
	}

	if !json.Valid(content) {
		return blob.Snapshot{}, fmt.Errorf("github fetch %s: %w", c.opts.Path, blob.ErrMalformed)
	}
	return blob.Snapshot{Content: content, Revision: file.SHA}, nil
}

// Write commits content on the configured branch. An empty revision asks
// GitHub to create the file.
func (c *Client) Write(ctx context.Context, content []byte, revision, message string) (blob.WriteResult, error) {
	if c.opts.Token == "" {
		return blob.WriteResult{}, fmt.Errorf("github write: %w", blob.ErrCredentialMissing)
	}

	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: EncodeContent(content),
		SHA:     revision,
		Branch:  c.opts.Branch,
	})
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("github write marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := c.do(ctx, http.MethodPut, c.contentsURL(), acceptJSON, payload)
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("github write: %w", err)
	}

	var out putResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return blob.WriteResult{}, fmt.Errorf("github write decode: %w: %v", blob.ErrTransient, err)
	}
	return blob.WriteResult{Revision: out.Content.SHA, Commit: out.Commit.SHA}, nil
}

// FetchRaw reads the file from the raw content host. It works without a
// token; one is attached when configured to get the higher rate limit.
// The raw host exposes no revision.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/%s/%s/%s", c.opts.RawURL, c.opts.Owner, c.opts.Repo, c.opts.Branch, c.opts.Path)
	body, err := c.do(ctx, http.MethodGet, url, "", nil)
	if err != nil {
		return nil, fmt.Errorf("github raw fetch: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("github raw fetch %s: %w", c.opts.Path, blob.ErrMalformed)
	}
	return body, nil
}

// Describe returns owner/repo/path@branch for logs.
func (c *Client) Describe() string {
	return fmt.Sprintf("%s/%s/%s@%s", c.opts.Owner, c.opts.Repo, c.opts.Path, c.opts.Branch)
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.opts.APIURL, c.opts.Owner, c.opts.Repo, c.opts.Path)
}

// do performs one request and maps the status code onto the blob error
// taxonomy. The response body is returned for 2xx answers.
func (c *Client) do(ctx context.Context, method, url, accept string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", blob.ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w: %v", blob.ErrTransient, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body)
}

// statusError maps a non-2xx answer. GitHub reports a stale sha as 409, or
// as 422 with a message naming the sha.
func statusError(status int, body []byte) error {
	msg := apiMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("status %d %s: %w", status, msg, blob.ErrUnauthorized)
	case status == http.StatusNotFound:
		return fmt.Errorf("status %d: %w", status, blob.ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("status %d %s: %w", status, msg, blob.ErrRevisionMismatch)
	case status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "sha"):
		return fmt.Errorf("status %d %s: %w", status, msg, blob.ErrRevisionMismatch)
	default:
		return fmt.Errorf("status %d %s: %w", status, msg, blob.ErrTransient)
	}
}

func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// EncodeContent base64-encodes file content for the Contents API.
func EncodeContent(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeContent decodes Contents API base64, which GitHub wraps with line
// breaks every 60 characters.
func DecodeContent(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w: %v", blob.ErrMalformed, err)
	}
	return b, nil
}
