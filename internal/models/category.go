// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// CategoryColor is the display hint attached to a category.
type CategoryColor string

const (
	ColorPrimary   CategoryColor = "primary"
	ColorAccent    CategoryColor = "accent"
	ColorSecondary CategoryColor = "secondary"
)

// Palette is the rotation used when a new category needs a color.
var Palette = []CategoryColor{ColorPrimary, ColorAccent, ColorSecondary}

// Valid reports whether c is one of the known colors.
func (c CategoryColor) Valid() bool {
	switch c {
	case ColorPrimary, ColorAccent, ColorSecondary:
		return true
	}
	return false
}

// Category is an aggregate entry of the document. Count must equal the
// number of posts in the category after every write.
type Category struct {
	Name  string        `json:"name"`
	Count int           `json:"count"`
	Color CategoryColor `json:"color"`
}
