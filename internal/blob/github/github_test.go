// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"inksplash/internal/blob"
	"inksplash/internal/blob/blobtest"
)

// fakeContents is a minimal in-memory Contents API for one file.
type fakeContents struct {
	mu      sync.Mutex
	content []byte
	sha     string
	seq     int
	lastPut putRequest
	headers http.Header
}

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = r.Header.Clone()

	if !strings.HasPrefix(r.URL.Path, "/repos/owner/repo/contents/public/api/blogs.json") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if f.sha == "" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Not Found"}`)
			return
		}
		// Wrap at 60 columns like the real API.
		enc := base64.StdEncoding.EncodeToString(f.content)
		var wrapped strings.Builder
		for i := 0; i < len(enc); i += 60 {
			end := min(i+60, len(enc))
			wrapped.WriteString(enc[i:end])
			wrapped.WriteByte('\n')
		}
		json.NewEncoder(w).Encode(contentsResponse{Content: wrapped.String(), Encoding: "base64", SHA: f.sha})

	case http.MethodPut:
		var req putRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastPut = req
		if req.SHA != f.sha {
			if f.sha != "" && req.SHA == "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				fmt.Fprint(w, `{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`)
				return
			}
			w.WriteHeader(http.StatusConflict)
			fmt.Fprintf(w, `{"message":"blogs.json does not match %s"}`, req.SHA)
			return
		}
		b, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.seq++
		f.content = b
		f.sha = fmt.Sprintf("sha-%d", f.seq)
		fmt.Fprintf(w, `{"content":{"sha":%q},"commit":{"sha":"commit-%d"}}`, f.sha, f.seq)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{
		Token:  "test-token",
		Owner:  "owner",
		Repo:   "repo",
		Path:   "public/api/blogs.json",
		Branch: "main",
		APIURL: srv.URL,
		RawURL: srv.URL + "/raw",
	})
}

func TestClientConformance(t *testing.T) {
	blobtest.Conformance(context.Background(), t, func(t *testing.T) blob.Store {
		return newTestClient(t, &fakeContents{})
	})
}

func TestWriteSendsCommitFields(t *testing.T) {
	fake := &fakeContents{}
	c := newTestClient(t, fake)

	res, err := c.Write(context.Background(), []byte(`{"posts":[]}`), "", "Add new blog post: Hello")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if res.Commit != "commit-1" || res.Revision != "sha-1" {
		t.Errorf("result = %+v, want sha-1/commit-1", res)
	}
	if fake.lastPut.Message != "Add new blog post: Hello" {
		t.Errorf("message = %q", fake.lastPut.Message)
	}
	if fake.lastPut.Branch != "main" {
		t.Errorf("branch = %q, want main", fake.lastPut.Branch)
	}
	if got := fake.headers.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := fake.headers.Get("Accept"); got != acceptJSON {
		t.Errorf("Accept = %q", got)
	}
	if fake.headers.Get("User-Agent") == "" {
		t.Error("User-Agent not set")
	}
}

func TestMissingTokenMakesNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(Options{Owner: "o", Repo: "r", Path: "p.json", APIURL: srv.URL})
	if _, err := c.Fetch(context.Background()); !errors.Is(err, blob.ErrCredentialMissing) {
		t.Errorf("Fetch = %v, want ErrCredentialMissing", err)
	}
	if _, err := c.Write(context.Background(), []byte(`{}`), "", "m"); !errors.Is(err, blob.ErrCredentialMissing) {
		t.Errorf("Write = %v, want ErrCredentialMissing", err)
	}
	if called {
		t.Error("request sent without a credential")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "401", status: 401, body: `{"message":"Bad credentials"}`, want: blob.ErrUnauthorized},
		{name: "403", status: 403, body: `{"message":"Resource not accessible"}`, want: blob.ErrUnauthorized},
		{name: "404", status: 404, body: `{"message":"Not Found"}`, want: blob.ErrNotFound},
		{name: "409", status: 409, body: `{"message":"conflict"}`, want: blob.ErrRevisionMismatch},
		{name: "422 sha", status: 422, body: `{"message":"\"sha\" wasn't supplied"}`, want: blob.ErrRevisionMismatch},
		{name: "422 other", status: 422, body: `{"message":"Invalid path"}`, want: blob.ErrTransient},
		{name: "500", status: 500, body: `oops`, want: blob.ErrTransient},
		{name: "502", status: 502, body: ``, want: blob.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			_, err := c.Fetch(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch with status %d = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestFetchMalformedContent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := base64.StdEncoding.EncodeToString([]byte("<html>not json</html>"))
		json.NewEncoder(w).Encode(contentsResponse{Content: enc, Encoding: "base64", SHA: "abc"})
	}))
	if _, err := c.Fetch(context.Background()); !errors.Is(err, blob.ErrMalformed) {
		t.Fatalf("Fetch = %v, want ErrMalformed", err)
	}
}

func TestFetchLargeFileUsesRawMediaType(t *testing.T) {
	doc := []byte(`{"posts":[{"id":"big"}],"categories":[]}`)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == acceptRaw {
			w.Write(doc)
			return
		}
		json.NewEncoder(w).Encode(contentsResponse{Content: "", Encoding: "none", SHA: "big-sha"})
	}))

	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(snap.Content, doc) || snap.Revision != "big-sha" {
		t.Errorf("snapshot = %q@%s", snap.Content, snap.Revision)
	}
}

func TestTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{Token: "t", Owner: "o", Repo: "r", Path: "p.json", APIURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, blob.ErrTransient) {
		t.Fatalf("Fetch = %v, want ErrTransient", err)
	}
}

func TestFetchRaw(t *testing.T) {
	doc := `{"posts":[],"categories":[]}`
	var gotPath, gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, doc)
	}))

	b, err := c.FetchRaw(context.Background())
	if err != nil {
		t.Fatalf("FetchRaw: %v", err)
	}
	if string(b) != doc {
		t.Errorf("body = %q", b)
	}
	if gotPath != "/raw/owner/repo/main/public/api/blogs.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestContentRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte(`{"posts":[],"categories":[]}`),
		[]byte(`{"posts":[{"title":"Ünïcødé ✨ post","content":"` + strings.Repeat("lorem ipsum ", 50) + `"}]}`),
		{},
	}
	for _, in := range inputs {
		enc := EncodeContent(in)
		// Insert GitHub-style line breaks.
		var wrapped strings.Builder
		for i := 0; i < len(enc); i += 60 {
			wrapped.WriteString(enc[i:min(i+60, len(enc))])
			wrapped.WriteString("\n")
		}
		out, err := DecodeContent(wrapped.String())
		if err != nil {
			t.Fatalf("DecodeContent: %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip = %q, want %q", out, in)
		}
	}
}

func TestDecodeContentInvalid(t *testing.T) {
	if _, err := DecodeContent("!!!not base64"); !errors.Is(err, blob.ErrMalformed) {
		t.Fatalf("DecodeContent = %v, want ErrMalformed", err)
	}
}
