// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"testing"

	"github.com/google/uuid"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	path := "seed-test/" + uuid.NewString() + ".json"
	t.Cleanup(func() {
		db.Exec("DELETE FROM blob_history WHERE path = $1", path)
		db.Exec("DELETE FROM blob_documents WHERE path = $1", path)
	})

	if err := Seed(db, path, []byte(`{"posts":[],"categories":[]}`)); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db, path, []byte(`{"posts":[{"id":"other"}]}`)); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var content []byte
	if err := db.QueryRow("SELECT content FROM blob_documents WHERE path = $1", path).Scan(&content); err != nil {
		t.Fatalf("read seeded document: %v", err)
	}
	if string(content) != `{"posts":[],"categories":[]}` {
		t.Errorf("second Seed overwrote the document: %s", content)
	}

	var history int
	if err := db.QueryRow("SELECT COUNT(*) FROM blob_history WHERE path = $1", path).Scan(&history); err != nil {
		t.Fatalf("count history: %v", err)
	}
	if history != 1 {
		t.Errorf("history rows = %d, want 1", history)
	}
}
