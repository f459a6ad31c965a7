// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedDocument is returned when bytes do not decode into a document
// with a posts array.
var ErrMalformedDocument = errors.New("malformed blog document")

// Document is the whole blob: every post plus the category aggregate.
// Top-level keys other than posts and categories are kept verbatim so a
// rewrite never drops data it does not understand.
type Document struct {
	Posts      []Post
	Categories []Category

	extra map[string]json.RawMessage
}

// Empty returns a document with no posts and no categories.
func Empty() Document {
	return Document{Posts: []Post{}, Categories: []Category{}}
}

// FindPost returns the index of the first post with the given id, or -1.
func (d *Document) FindPost(id string) int {
	for i := range d.Posts {
		if d.Posts[i].ID == id {
			return i
		}
	}
	return -1
}

// UnmarshalJSON requires a JSON object whose "posts" member is an array.
// A missing categories member decodes as an empty list.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if raw == nil {
		return fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}

	postsRaw, ok := raw["posts"]
	if !ok || !isArray(postsRaw) {
		return fmt.Errorf("%w: posts must be an array", ErrMalformedDocument)
	}
	var posts []Post
	if err := json.Unmarshal(postsRaw, &posts); err != nil {
		return fmt.Errorf("%w: posts: %v", ErrMalformedDocument, err)
	}

	categories := []Category{}
	if catRaw, ok := raw["categories"]; ok && !isNull(catRaw) {
		if err := json.Unmarshal(catRaw, &categories); err != nil {
			return fmt.Errorf("%w: categories: %v", ErrMalformedDocument, err)
		}
	}

	delete(raw, "posts")
	delete(raw, "categories")

	d.Posts = posts
	d.Categories = categories
	d.extra = nil
	if len(raw) > 0 {
		d.extra = raw
	}
	return nil
}

// MarshalJSON writes posts first, then categories, then any preserved keys
// in sorted order.
func (d Document) MarshalJSON() ([]byte, error) {
	posts := d.Posts
	if posts == nil {
		posts = []Post{}
	}
	categories := d.Categories
	if categories == nil {
		categories = []Category{}
	}

	var buf bytes.Buffer
	buf.WriteString(`{"posts":`)
	pb, err := json.Marshal(posts)
	if err != nil {
		return nil, err
	}
	buf.Write(pb)

	buf.WriteString(`,"categories":`)
	cb, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}
	buf.Write(cb)

	keys := make([]string, 0, len(d.extra))
	for k := range d.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kb, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(d.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeDocument parses raw blob content.
func DecodeDocument(b []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		if errors.Is(err, ErrMalformedDocument) {
			return Document{}, err
		}
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return d, nil
}

// EncodeDocument serializes a document with two-space indentation, the
// layout the stored file has always used.
func EncodeDocument(d Document) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func isArray(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
