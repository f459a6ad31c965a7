// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pgstore

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"inksplash/internal/blob"
	"inksplash/internal/blob/blobtest"
	"inksplash/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to a local PostgreSQL and applies migrations, skipping
// the test when no database is reachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "postgres://" + envOr("POSTGRES_USER", "inksplash") + ":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "inksplash") + "?sslmode=disable"
	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func newTestStore(t *testing.T, db *sql.DB) *Store {
	path := "test/" + uuid.NewString() + ".json"
	t.Cleanup(func() {
		db.Exec("DELETE FROM blob_history WHERE path = $1", path)
		db.Exec("DELETE FROM blob_documents WHERE path = $1", path)
	})
	return New(db, path, 5*time.Second)
}

func TestStore(t *testing.T) {
	db := testDB(t)
	blobtest.Conformance(context.Background(), t, func(t *testing.T) blob.Store {
		return newTestStore(t, db)
	})
}

func TestHistoryRecordsMessages(t *testing.T) {
	db := testDB(t)
	s := newTestStore(t, db)
	ctx := context.Background()

	first, err := s.Write(ctx, []byte(`{"posts":[]}`), "", "Add new blog post: One")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Write(ctx, []byte(`{"posts":[]}`), first.Revision, "Delete blog post: One"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 || got[0] != "Delete blog post: One" {
		t.Errorf("history = %v", got)
	}
	if first.Commit == "" {
		t.Error("write returned no history id")
	}
}
