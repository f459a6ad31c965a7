// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the blog document stored in the blob store: posts,
// the aggregate category list, and the codec for the whole document.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Post is one blog entry as stored in the document. Field names follow the
// JSON layout consumed by the front end.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	ReadTime    string   `json:"readTime"`
	PublishDate string   `json:"publishDate"`
	Views       string   `json:"views"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`

	// Optional fields written by the ingestion webhook and by older
	// documents. They are carried through rewrites untouched.
	Slug      string `json:"slug,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Author    string `json:"author,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`

	// extra holds post keys with no field above, written back verbatim.
	extra map[string]json.RawMessage
}

// postKeys are the JSON members decoded into Post fields.
var postKeys = []string{
	"id", "title", "description", "content", "category", "readTime",
	"publishDate", "views", "tags", "featured",
	"slug", "excerpt", "author", "thumbnail",
}

// plain has the fields of Post without its methods.
type plain Post

// UnmarshalJSON decodes a stored post. Loosely typed values other writers
// leave behind are accepted: views as a number, featured as the string
// "true", tags as a single string. Unknown keys are kept.
func (p *Post) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	var aux struct {
		plain
		Views    json.RawMessage `json:"views"`
		Tags     json.RawMessage `json:"tags"`
		Featured json.RawMessage `json:"featured"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	views, err := decodeViews(aux.Views)
	if err != nil {
		return err
	}
	tags, err := decodeTags(aux.Tags)
	if err != nil {
		return err
	}

	*p = Post(aux.plain)
	p.Views = views
	p.Tags = tags
	p.Featured = decodeFeatured(aux.Featured)

	for _, k := range postKeys {
		delete(raw, k)
	}
	p.extra = nil
	if len(raw) > 0 {
		p.extra = raw
	}
	return nil
}

// MarshalJSON always writes tags as an array, never null, followed by any
// preserved keys in sorted order.
func (p Post) MarshalJSON() ([]byte, error) {
	out := plain(p)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	b, err := json.Marshal(out)
	if err != nil || len(p.extra) == 0 {
		return b, err
	}

	keys := make([]string, 0, len(p.extra))
	for k := range p.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := bytes.NewBuffer(b[:len(b)-1])
	for _, k := range keys {
		kb, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(p.extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeViews(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("views must be a string or a number")
	}
	return n.String(), nil
}

func decodeTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return []string{}, nil
		}
		return []string{s}, nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("tags must be a string or an array of strings")
	}
	return tags, nil
}

// decodeFeatured is true only for JSON true or the string "true".
func decodeFeatured(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return bytes.Equal(raw, []byte("true")) || bytes.Equal(raw, []byte(`"true"`))
}
