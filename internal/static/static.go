// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package static embeds the sample blog document compiled into the binary.
// It is the last source of the fallback chain and the seed for empty
// stores.
package static

import (
	_ "embed"

	"inksplash/internal/models"
)

//go:embed blogs.json
var blogsJSON []byte

// Blogs returns a copy of the embedded document bytes.
func Blogs() []byte {
	return append([]byte(nil), blogsJSON...)
}

// Document decodes the embedded document.
func Document() (models.Document, error) {
	return models.DecodeDocument(blogsJSON)
}
