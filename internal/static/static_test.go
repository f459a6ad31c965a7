// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package static

import (
	"testing"

	"inksplash/internal/reconcile"
)

func TestEmbeddedDocument(t *testing.T) {
	doc, err := Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Posts) == 0 {
		t.Fatal("embedded document has no posts")
	}

	// Counts in the bundled file must already be reconciled.
	for i, c := range reconcile.Reconcile(doc.Posts, doc.Categories) {
		if c.Count != doc.Categories[i].Count {
			t.Errorf("%s: stored count %d, actual %d", c.Name, doc.Categories[i].Count, c.Count)
		}
		if !c.Color.Valid() {
			t.Errorf("%s: invalid color %q", c.Name, c.Color)
		}
	}
}

func TestBlogsReturnsCopy(t *testing.T) {
	b := Blogs()
	b[0] = 'X'
	if Blogs()[0] != '{' {
		t.Error("Blogs exposed the embedded slice")
	}
}
