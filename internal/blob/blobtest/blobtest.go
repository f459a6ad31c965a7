// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blobtest holds a behavioral test suite shared by every
// blob.Store backend.
package blobtest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"inksplash/internal/blob"
)

// Conformance exercises the create, update and conflict rules of a store.
// newStore must return a store whose document does not exist yet.
func Conformance(ctx context.Context, t *testing.T, newStore func(t *testing.T) blob.Store) {
	t.Run("fetch missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Fetch(ctx); !errors.Is(err, blob.ErrNotFound) {
			t.Fatalf("Fetch on empty store = %v, want ErrNotFound", err)
		}
	})

	t.Run("create then read", func(t *testing.T) {
		s := newStore(t)
		data := []byte(`{"posts":[],"categories":[]}`)

		res, err := s.Write(ctx, data, "", "create")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if res.Revision == "" {
			t.Fatal("create returned empty revision")
		}

		snap, err := s.Fetch(ctx)
		if err != nil {
			t.Fatalf("Fetch after create: %v", err)
		}
		if !bytes.Equal(snap.Content, data) {
			t.Errorf("content = %q, want %q", snap.Content, data)
		}
		if snap.Revision != res.Revision {
			t.Errorf("revision = %q, want %q", snap.Revision, res.Revision)
		}
	})

	t.Run("create twice", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Write(ctx, []byte(`{"posts":[]}`), "", "first"); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := s.Write(ctx, []byte(`{"posts":[1]}`), "", "second")
		if !errors.Is(err, blob.ErrRevisionMismatch) {
			t.Fatalf("second create = %v, want ErrRevisionMismatch", err)
		}
	})

	t.Run("stale revision", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Write(ctx, []byte(`{"posts":[]}`), "", "create")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.Write(ctx, []byte(`{"posts":[{"id":"a"}]}`), first.Revision, "update a"); err != nil {
			t.Fatalf("update from current revision: %v", err)
		}
		_, err = s.Write(ctx, []byte(`{"posts":[{"id":"b"}]}`), first.Revision, "update b")
		if !errors.Is(err, blob.ErrRevisionMismatch) {
			t.Fatalf("update from stale revision = %v, want ErrRevisionMismatch", err)
		}

		snap, err := s.Fetch(ctx)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !bytes.Equal(snap.Content, []byte(`{"posts":[{"id":"a"}]}`)) {
			t.Errorf("rejected write changed content: %q", snap.Content)
		}
	})

	t.Run("malformed content", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Write(ctx, []byte("<html>not json</html>"), "", "create"); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := s.Fetch(ctx); !errors.Is(err, blob.ErrMalformed) {
			t.Fatalf("Fetch of non-JSON content = %v, want ErrMalformed", err)
		}
	})

	t.Run("revision changes on every write", func(t *testing.T) {
		s := newStore(t)
		seen := map[string]bool{}
		rev := ""
		for i, body := range []string{`{"posts":[]}`, `{"posts":[1]}`, `{"posts":[1,2]}`} {
			res, err := s.Write(ctx, []byte(body), rev, "write")
			if err != nil {
				t.Fatalf("write %d: %v", i, err)
			}
			if seen[res.Revision] {
				t.Fatalf("write %d reused revision %q", i, res.Revision)
			}
			seen[res.Revision] = true
			rev = res.Revision
		}
	})
}
