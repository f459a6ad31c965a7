// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"inksplash/internal/blob"
	"inksplash/internal/models"
	"inksplash/internal/static"
)

// maxBody caps how much of a remote response is read.
const maxBody = 16 << 20

// HTTPSource reads the document from a URL serving either the bare
// document or the {success, data} envelope of the get-blogs endpoint.
type HTTPSource struct {
	SourceName string
	URL        string
	Client     *http.Client
}

func (s *HTTPSource) Name() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return "proxy"
}

func (s *HTTPSource) Load(ctx context.Context) (models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s request: %w", s.Name(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("%s http: %w", s.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return models.Document{}, fmt.Errorf("%s read body: %w", s.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("%s status %d", s.Name(), resp.StatusCode)
	}
	return DecodeEnvelope(body)
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// DecodeEnvelope accepts a bare document or {success, data}.
func DecodeEnvelope(body []byte) (models.Document, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return models.Document{}, fmt.Errorf("upstream reported failure: %s", env.Error)
		}
		return models.DecodeDocument(env.Data)
	}
	return models.DecodeDocument(body)
}

// RawFetcher reads document bytes without a revision, such as the GitHub
// raw content host.
type RawFetcher interface {
	FetchRaw(ctx context.Context) ([]byte, error)
}

// RawSource reads the document through a RawFetcher.
type RawSource struct {
	Fetcher RawFetcher
}

func (s *RawSource) Name() string { return "raw" }

func (s *RawSource) Load(ctx context.Context) (models.Document, error) {
	b, err := s.Fetcher.FetchRaw(ctx)
	if err != nil {
		return models.Document{}, err
	}
	return models.DecodeDocument(b)
}

// StoreSource reads the document from a blob store.
type StoreSource struct {
	Store blob.Store
}

func (s *StoreSource) Name() string { return "store" }

func (s *StoreSource) Load(ctx context.Context) (models.Document, error) {
	snap, err := s.Store.Fetch(ctx)
	if err != nil {
		return models.Document{}, err
	}
	return models.DecodeDocument(snap.Content)
}

// FileSource reads the document from a file on disk.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) Load(ctx context.Context) (models.Document, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return models.Document{}, fmt.Errorf("file source: %w", err)
	}
	return models.DecodeDocument(b)
}

// StaticSource serves the document embedded in the binary.
type StaticSource struct{}

func (StaticSource) Name() string { return "static" }

func (StaticSource) Load(ctx context.Context) (models.Document, error) {
	return static.Document()
}

// ChainOptions selects the sources of the standard read chain. Zero
// fields are skipped.
type ChainOptions struct {
	ProxyURL string
	Client   *http.Client
	Raw      RawFetcher
	Store    blob.Store
	FilePath string
}

// Chain builds the standard read chain in order: proxy, raw endpoint,
// store, local file, embedded document.
func Chain(o ChainOptions) []Source {
	var out []Source
	if o.ProxyURL != "" {
		out = append(out, &HTTPSource{URL: o.ProxyURL, Client: o.Client})
	}
	if o.Raw != nil {
		out = append(out, &RawSource{Fetcher: o.Raw})
	}
	if o.Store != nil {
		out = append(out, &StoreSource{Store: o.Store})
	}
	if o.FilePath != "" {
		out = append(out, &FileSource{Path: o.FilePath})
	}
	return append(out, StaticSource{})
}
