// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile keeps the category aggregate in step with the posts.
//
// Category names match case-insensitively under Unicode case folding; the
// stored spelling is whatever the category was first created with.
package reconcile

import (
	"golang.org/x/text/cases"

	"inksplash/internal/models"
)

// Key returns the matching key of a category name.
func Key(name string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(name)
}

// Reconcile returns a copy of categories with each count set to the number
// of posts in that category. Categories with no posts get 0. Categories
// that posts mention but the list lacks are not created.
func Reconcile(posts []models.Post, categories []models.Category) []models.Category {
	counts := make(map[string]int, len(categories))
	for _, p := range posts {
		counts[Key(p.Category)]++
	}

	out := make([]models.Category, len(categories))
	for i, c := range categories {
		c.Count = counts[Key(c.Name)]
		out[i] = c
	}
	return out
}

// Canonical returns the stored spelling of the category matching name, or
// name itself when no category matches.
func Canonical(name string, categories []models.Category) string {
	k := Key(name)
	for _, c := range categories {
		if Key(c.Name) == k {
			return c.Name
		}
	}
	return name
}

// Ensure returns categories with name present. A missing category is
// appended with count 0 and the next color of the palette rotation.
func Ensure(name string, categories []models.Category) []models.Category {
	out := append([]models.Category(nil), categories...)
	if name == "" {
		return out
	}
	k := Key(name)
	for _, c := range out {
		if Key(c.Name) == k {
			return out
		}
	}
	color := models.Palette[len(out)%len(models.Palette)]
	return append(out, models.Category{Name: name, Count: 0, Color: color})
}
