// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives URL slugs from post titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// unsafe matches anything that isn't a word character, space or hyphen.
	unsafe = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// spaces matches runs of whitespace.
	spaces = regexp.MustCompile(`\s+`)
	// hyphens collapses consecutive hyphens into one.
	hyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from a title. Accents are folded
// to their base letter before unsafe characters are dropped.
// Example: "Naruto: Café & Ramen!" → "naruto-cafe-ramen"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(foldAccents(s)))
	result = unsafe.ReplaceAllString(result, "")
	result = spaces.ReplaceAllString(result, "-")
	result = hyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
