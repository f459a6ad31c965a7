// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Seed stores content as the document at path when no document exists
// there yet. An existing document is never touched.
func Seed(db *sql.DB, path string, content []byte) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM blob_documents WHERE path = $1", path).Scan(&count); err != nil {
		return fmt.Errorf("seed check documents: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping", "path", path)
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	rev := uuid.NewString()
	res, err := tx.Exec(`
		INSERT INTO blob_documents (path, content, revision)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO NOTHING
	`, path, content, rev)
	if err != nil {
		return fmt.Errorf("seed insert document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO blob_history (path, revision, message)
		VALUES ($1, $2, $3)
	`, path, rev, "Seed blog document"); err != nil {
		return fmt.Errorf("seed insert history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with blog document", "path", path, "bytes", len(content))
	return nil
}
