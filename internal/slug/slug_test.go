// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

// TestGenerate covers typical post titles, punctuation, accents and
// whitespace handling.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Titles ---
		{name: "two words", input: "Hello World", want: "hello-world"},
		{name: "anime review", input: "Attack on Titan: Final Season Review", want: "attack-on-titan-final-season-review"},
		{name: "apostrophe", input: "Gojo's Domain Expansion Explained", want: "gojos-domain-expansion-explained"},
		{name: "ampersand", input: "Marvel & Comics", want: "marvel-comics"},
		{name: "question", input: "Is One Piece Ending Soon?", want: "is-one-piece-ending-soon"},
		{name: "numbers", input: "Top 10 Manga of 2026", want: "top-10-manga-of-2026"},
		{name: "dotted version", input: "Chainsaw Man 2.0", want: "chainsaw-man-20"},

		// --- Character classes ---
		{name: "underscore kept", input: "snake_case title", want: "snake_case-title"},
		{name: "accents folded", input: "Café Résumé Noël", want: "cafe-resume-noel"},
		{name: "umlauts folded", input: "Über die Brücke", want: "uber-die-brucke"},
		{name: "emoji dropped", input: "Hype ✨ Train", want: "hype-train"},
		{name: "cjk dropped", input: "進撃の巨人 Review", want: "review"},

		// --- Whitespace and hyphens ---
		{name: "surrounding spaces", input: "  spaced out  ", want: "spaced-out"},
		{name: "tab and newline", input: "tab\there\nnewline", want: "tab-here-newline"},
		{name: "runs of hyphens", input: "one---two", want: "one-two"},
		{name: "leading and trailing hyphens", input: "--edge--", want: "edge"},
		{name: "hyphen next to space", input: "well - known", want: "well-known"},

		// --- Degenerate input ---
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: "!?@#", want: ""},
		{name: "only spaces", input: "    ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
