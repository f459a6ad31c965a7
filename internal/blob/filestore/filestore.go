// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filestore keeps the document in a local file. The revision is
// the SHA-256 of the file bytes, so edits made outside the process are
// detected like any other concurrent write.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"inksplash/internal/blob"
)

var _ blob.Store = &Store{}

// Store is a file-backed blob.Store. Writes are serialized by a process
// mutex and land atomically through a temp file and rename.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store for the file at path. The file need not exist.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Fetch(ctx context.Context) (blob.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return blob.Snapshot{}, fmt.Errorf("filestore fetch: %w: %v", blob.ErrTransient, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return blob.Snapshot{}, err
	}
	if !json.Valid(data) {
		return blob.Snapshot{}, fmt.Errorf("filestore fetch %s: %w", s.path, blob.ErrMalformed)
	}
	return blob.Snapshot{Content: data, Revision: revisionOf(data)}, nil
}

func (s *Store) Write(ctx context.Context, content []byte, revision, message string) (blob.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return blob.WriteResult{}, fmt.Errorf("filestore write: %w: %v", blob.ErrTransient, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	data, err := s.read()
	switch {
	case err == nil:
		current = revisionOf(data)
	case errors.Is(err, blob.ErrNotFound):
	default:
		return blob.WriteResult{}, err
	}

	if revision != current {
		return blob.WriteResult{}, fmt.Errorf("filestore write %s: %w", s.path, blob.ErrRevisionMismatch)
	}

	if err := s.replace(content); err != nil {
		return blob.WriteResult{}, err
	}

	rev := revisionOf(content)
	slog.Info("filestore write", "path", s.path, "revision", rev[:12], "message", message)
	return blob.WriteResult{Revision: rev}, nil
}

// Caller must hold the lock.
func (s *Store) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("filestore read %s: %w", s.path, blob.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("filestore read %s: %w: %v", s.path, blob.ErrTransient, err)
	}
	return data, nil
}

// Caller must hold the lock.
func (s *Store) replace(content []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filestore mkdir %s: %w: %v", dir, blob.ErrTransient, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore temp file: %w: %v", blob.ErrTransient, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore write temp: %w: %v", blob.ErrTransient, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore close temp: %w: %v", blob.ErrTransient, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("filestore rename: %w: %v", blob.ErrTransient, err)
	}
	return nil
}

func revisionOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
