// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore is an in-memory blob.Store used by tests and by the
// memory backend.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"inksplash/internal/blob"
)

var _ blob.Store = &Store{}

// Store keeps one document in memory. Revisions are a counter rendered as
// a decimal string; the empty revision means the document does not exist.
type Store struct {
	mu       sync.Mutex
	content  []byte
	revision int
	messages []string
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// NewWithContent returns a store already holding content at revision "1".
func NewWithContent(content []byte) *Store {
	return &Store{content: clone(content), revision: 1}
}

func (s *Store) Fetch(_ context.Context) (blob.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision == 0 {
		return blob.Snapshot{}, blob.ErrNotFound
	}
	if !json.Valid(s.content) {
		return blob.Snapshot{}, fmt.Errorf("memstore fetch: %w", blob.ErrMalformed)
	}
	return blob.Snapshot{Content: clone(s.content), Revision: strconv.Itoa(s.revision)}, nil
}

func (s *Store) Write(ctx context.Context, content []byte, revision, message string) (blob.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return blob.WriteResult{}, fmt.Errorf("memstore write: %w: %v", blob.ErrTransient, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if revision != s.currentRevision() {
		return blob.WriteResult{}, fmt.Errorf("memstore write at %q, current %q: %w",
			revision, s.currentRevision(), blob.ErrRevisionMismatch)
	}

	s.revision++
	s.content = clone(content)
	s.messages = append(s.messages, message)
	rev := strconv.Itoa(s.revision)

	slog.Debug("memstore write", "revision", rev, "message", message)
	return blob.WriteResult{Revision: rev, Commit: rev}, nil
}

// Messages returns the audit messages of every committed write, oldest
// first.
func (s *Store) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Caller must hold the lock.
func (s *Store) currentRevision() string {
	if s.revision == 0 {
		return ""
	}
	return strconv.Itoa(s.revision)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
