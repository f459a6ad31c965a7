// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"inksplash/internal/models"
)

func posts(categories ...string) []models.Post {
	out := make([]models.Post, len(categories))
	for i, c := range categories {
		out[i] = models.Post{ID: fmt.Sprint(i), Category: c}
	}
	return out
}

func sampleCategories() []models.Category {
	return []models.Category{
		{Name: "Anime Reviews", Count: 7, Color: models.ColorPrimary},
		{Name: "Manga", Count: 0, Color: models.ColorAccent},
		{Name: "Marvel & Comics", Count: 3, Color: models.ColorSecondary},
	}
}

func TestReconcile(t *testing.T) {
	got := Reconcile(posts("Anime Reviews", "Manga", "Anime Reviews", "Unknown"), sampleCategories())
	want := []models.Category{
		{Name: "Anime Reviews", Count: 2, Color: models.ColorPrimary},
		{Name: "Manga", Count: 1, Color: models.ColorAccent},
		{Name: "Marvel & Comics", Count: 0, Color: models.ColorSecondary},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reconcile (-want +got):\n%s", diff)
	}
}

func TestReconcileCaseInsensitive(t *testing.T) {
	got := Reconcile(posts("manga", "MANGA", "Manga"), sampleCategories())
	if got[1].Count != 3 {
		t.Errorf("Manga count = %d, want 3", got[1].Count)
	}
	if got[1].Name != "Manga" {
		t.Errorf("stored spelling changed to %q", got[1].Name)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	cats := sampleCategories()
	before := sampleCategories()
	Reconcile(posts("Manga"), cats)
	if diff := cmp.Diff(before, cats); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestReconcileDoesNotCreate(t *testing.T) {
	got := Reconcile(posts("Fan Theories"), sampleCategories())
	if len(got) != 3 {
		t.Errorf("Reconcile returned %d categories, want 3", len(got))
	}
}

func TestReconcileMatchesCountBy(t *testing.T) {
	names := []string{"Anime Reviews", "Manga", "Marvel & Comics", "Other"}
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		var cs []string
		countBy := map[string]int{}
		size := r.IntN(40)
		for i := 0; i < size; i++ {
			n := names[r.IntN(len(names))]
			cs = append(cs, n)
			countBy[n]++
		}
		for _, c := range Reconcile(posts(cs...), sampleCategories()) {
			if c.Count != countBy[c.Name] {
				t.Fatalf("round %d: %s count = %d, want %d", round, c.Name, c.Count, countBy[c.Name])
			}
		}
	}
}

func TestCanonical(t *testing.T) {
	cats := sampleCategories()
	if got := Canonical("anime reviews", cats); got != "Anime Reviews" {
		t.Errorf("Canonical = %q, want Anime Reviews", got)
	}
	if got := Canonical("Isekai", cats); got != "Isekai" {
		t.Errorf("Canonical(unknown) = %q, want Isekai", got)
	}
}

func TestEnsure(t *testing.T) {
	cats := sampleCategories()

	same := Ensure("MANGA", cats)
	if len(same) != 3 {
		t.Errorf("Ensure(existing) added a category: %+v", same)
	}

	added := Ensure("Isekai", cats)
	if len(added) != 4 {
		t.Fatalf("Ensure(new) = %d categories, want 4", len(added))
	}
	want := models.Category{Name: "Isekai", Count: 0, Color: models.ColorPrimary}
	if diff := cmp.Diff(want, added[3]); diff != "" {
		t.Errorf("new category (-want +got):\n%s", diff)
	}
	if len(cats) != 3 {
		t.Error("Ensure mutated its input")
	}

	next := Ensure("Seinen", added)
	if next[4].Color != models.ColorAccent {
		t.Errorf("color rotation = %q, want accent", next[4].Color)
	}
}

func TestEnsureEmptyName(t *testing.T) {
	if got := Ensure("", nil); len(got) != 0 {
		t.Errorf("Ensure(\"\") = %+v", got)
	}
}
