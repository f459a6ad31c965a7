// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pgstore keeps the document in a PostgreSQL row. Every committed
// write appends its audit message to blob_history. The schema is created by
// the migrations in internal/database.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inksplash/internal/blob"
)

var _ blob.Store = &Store{}

// Store is a blob.Store over the blob_documents table.
type Store struct {
	db      *sql.DB
	path    string
	timeout time.Duration
}

// New returns a store for the document at path.
func New(db *sql.DB, path string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{db: db, path: path, timeout: timeout}
}

func (s *Store) Fetch(ctx context.Context) (blob.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var snap blob.Snapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT content, revision FROM blob_documents WHERE path = $1`, s.path,
	).Scan(&snap.Content, &snap.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return blob.Snapshot{}, fmt.Errorf("pgstore fetch %s: %w", s.path, blob.ErrNotFound)
	}
	if err != nil {
		return blob.Snapshot{}, fmt.Errorf("pgstore fetch %s: %w", s.path, classify(err))
	}
	if !json.Valid(snap.Content) {
		return blob.Snapshot{}, fmt.Errorf("pgstore fetch %s: %w", s.path, blob.ErrMalformed)
	}
	return snap, nil
}

func (s *Store) Write(ctx context.Context, content []byte, revision, message string) (blob.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("pgstore begin: %w", classify(err))
	}
	defer tx.Rollback()

	next := uuid.NewString()
	var res sql.Result
	if revision == "" {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO blob_documents (path, content, revision)
			VALUES ($1, $2, $3)
			ON CONFLICT (path) DO NOTHING
		`, s.path, content, next)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE blob_documents
			SET content = $3, revision = $4, updated_at = now()
			WHERE path = $1 AND revision = $2
		`, s.path, revision, content, next)
	}
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("pgstore write %s: %w", s.path, classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("pgstore rows affected: %w", classify(err))
	}
	if n == 0 {
		return blob.WriteResult{}, fmt.Errorf("pgstore write %s at %q: %w", s.path, revision, blob.ErrRevisionMismatch)
	}

	var historyID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO blob_history (path, revision, message)
		VALUES ($1, $2, $3)
		RETURNING id
	`, s.path, next, message).Scan(&historyID); err != nil {
		return blob.WriteResult{}, fmt.Errorf("pgstore history: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return blob.WriteResult{}, fmt.Errorf("pgstore commit: %w", classify(err))
	}
	return blob.WriteResult{Revision: next, Commit: strconv.FormatInt(historyID, 10)}, nil
}

// History returns the audit messages recorded for the document, newest
// first.
func (s *Store) History(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT message FROM blob_history
		WHERE path = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, s.path, limit)
	if err != nil {
		return nil, fmt.Errorf("pgstore history: %w", classify(err))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("pgstore history scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// classify maps driver errors onto the blob taxonomy. Authentication
// failures surface as SQLSTATE class 28.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "28" {
		return fmt.Errorf("%w: %v", blob.ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %v", blob.ErrTransient, err)
}
