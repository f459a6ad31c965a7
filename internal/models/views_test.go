// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestFormatViews(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1.0K"},
		{1250, "1.2K"},
		{1299, "1.3K"},
		{999_999, "1000.0K"},
		{1_000_000, "1.0M"},
		{1_500_000, "1.5M"},
	}
	for _, tt := range tests {
		if got := FormatViews(tt.n); got != tt.want {
			t.Errorf("FormatViews(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestParseViews(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"0", 0},
		{"42", 42},
		{"1,234", 1234},
		{"1.2K", 12},
		{"views: 7", 7},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := ParseViews(tt.in); got != tt.want {
			t.Errorf("ParseViews(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIncrementFormatting(t *testing.T) {
	got := FormatViews(ParseViews("999") + 1)
	if got != "1.0K" {
		t.Errorf("999 + 1 = %q, want 1.0K", got)
	}
}
