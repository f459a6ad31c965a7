// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package transform turns an incoming post payload into a canonical
// models.Post: required fields are checked and every absent field gets its
// default. It performs no I/O; the clock and the view seed are injected.
package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"inksplash/internal/models"
	"inksplash/internal/slug"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the payload fields that are missing or unusable.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required lists the fields a payload must carry.
var Required = []string{"title", "content"}

// Input is the raw payload accepted by the write endpoints. An empty string
// means the field was absent. Tags and Featured keep their raw JSON because
// clients send them in more than one shape.
type Input struct {
	ID          string          `json:"id"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Content     string          `json:"content" validate:"required"`
	Category    string          `json:"category"`
	ReadTime    string          `json:"readTime"`
	PublishDate string          `json:"publishDate"`
	Views       string          `json:"views"`
	Tags        json.RawMessage `json:"tags"`
	Featured    json.RawMessage `json:"featured"`
	Slug        string          `json:"slug"`
	Excerpt     string          `json:"excerpt"`
	Author      string          `json:"author"`
	Thumbnail   string          `json:"thumbnail"`
}

// Profile selects the defaulting rules of a call path.
type Profile int

const (
	// ProfileAPI is used by the blog write endpoints.
	ProfileAPI Profile = iota
	// ProfileWebhook is used by the ingestion webhook: n8n- ids, a seeded
	// view count, and slug and excerpt filled in.
	ProfileWebhook
)

// Options carry the injected defaults.
type Options struct {
	DefaultCategory string
	IDPrefix        string
	Now             func() time.Time
	Views           func() string
	Profile         Profile
}

// OptionsFor returns the standard options of a profile.
func OptionsFor(p Profile, defaultCategory string) Options {
	opts := Options{DefaultCategory: defaultCategory, IDPrefix: "post-", Profile: p}
	if p == ProfileWebhook {
		opts.IDPrefix = "n8n-"
		opts.Views = SeedViews
	}
	return opts
}

// SeedViews returns a random display count between 1.0k and 6.0k, the seed
// given to posts that arrive through the webhook.
func SeedViews() string {
	n := rand.IntN(5000) + 1000
	return fmt.Sprintf("%.1fk", float64(n)/1000)
}

const (
	wordsPerMinute    = 200
	descriptionLength = 150
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Normalize validates in and fills every absent field.
func Normalize(in Input, opts Options) (models.Post, error) {
	if err := checkRequired(in); err != nil {
		return models.Post{}, err
	}

	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return models.Post{}, &ValidationError{Invalid: []string{"tags"}}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	prefix := opts.IDPrefix
	if prefix == "" {
		prefix = "post-"
	}

	p := models.Post{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Category:    in.Category,
		ReadTime:    in.ReadTime,
		PublishDate: in.PublishDate,
		Views:       in.Views,
		Tags:        tags,
		Featured:    normalizeFeatured(in.Featured),
		Slug:        in.Slug,
		Excerpt:     in.Excerpt,
		Author:      in.Author,
		Thumbnail:   in.Thumbnail,
	}

	if p.ID == "" {
		p.ID = prefix + strconv.FormatInt(now().UnixMilli(), 10)
	}
	if p.Description == "" {
		p.Description = Summarize(p.Content)
	}
	if p.Category == "" {
		p.Category = opts.DefaultCategory
	}
	if p.ReadTime == "" {
		p.ReadTime = ReadTime(p.Content)
	}
	if p.PublishDate == "" {
		p.PublishDate = now().Format(time.DateOnly)
	}
	if p.Views == "" {
		p.Views = "0"
		if opts.Views != nil {
			p.Views = opts.Views()
		}
	}

	if opts.Profile == ProfileWebhook {
		if p.Slug == "" {
			p.Slug = slug.Generate(p.Title)
		}
		if p.Excerpt == "" {
			p.Excerpt = p.Description
		}
	}
	return p, nil
}

// FromPost converts a stored post back into an input carrying every field.
func FromPost(p models.Post) Input {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	rawTags, _ := json.Marshal(tags)
	return Input{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Category:    p.Category,
		ReadTime:    p.ReadTime,
		PublishDate: p.PublishDate,
		Views:       p.Views,
		Tags:        rawTags,
		Featured:    json.RawMessage(strconv.FormatBool(p.Featured)),
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Author:      p.Author,
		Thumbnail:   p.Thumbnail,
	}
}

// ReadTime estimates reading time at 200 words per minute, never less than
// one minute.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Summarize returns the first 150 characters of content followed by "...".
func Summarize(content string) string {
	r := []rune(content)
	if len(r) > descriptionLength {
		r = r[:descriptionLength]
	}
	return string(r) + "..."
}

func checkRequired(in Input) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Invalid: []string{err.Error()}}
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Missing = append(ve.Missing, fe.Field())
	}
	return ve
}

// normalizeTags accepts an array of strings, a single string, or nothing.
func normalizeTags(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		if s == "" {
			return []string{}, nil
		}
		return []string{s}, nil
	case '[':
		var tags []string
		if err := json.Unmarshal(raw, &tags); err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		return tags, nil
	}
	return nil, fmt.Errorf("tags must be a string or an array of strings")
}

// normalizeFeatured is true only for JSON true or the string "true".
func normalizeFeatured(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return bytes.Equal(raw, []byte("true")) || bytes.Equal(raw, []byte(`"true"`))
}
