// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package orchestrator runs the read-modify-write cycle against a blob
// store: fetch the document and its revision, apply one mutation, recount
// categories, and write back conditioned on the fetched revision.
//
// A concurrent writer makes the write fail with ErrConflict. The cycle is
// never retried here; callers may opt into Retry.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inksplash/internal/blob"
	"inksplash/internal/models"
	"inksplash/internal/reconcile"
	"inksplash/internal/transform"
)

// Failure classes. Every error returned by a mutation matches exactly one of
// these or transform.ErrValidation.
var (
	ErrFetch        = errors.New("fetch failed")
	ErrConflict     = errors.New("document changed since it was fetched")
	ErrWrite        = errors.New("write failed")
	ErrPostNotFound = errors.New("post not found")
)

// State is a step of the cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateTransforming
	StateReconciling
	StateWriting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateTransforming:
		return "transforming"
	case StateReconciling:
		return "reconciling"
	case StateWriting:
		return "writing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Op names a mutation.
type Op string

const (
	OpAdd       Op = "add"
	OpDelete    Op = "delete"
	OpIncrement Op = "increment_view"
)

// Transition is reported to observers on every state change. Err is set
// when To is StateFailed.
type Transition struct {
	Op      Op
	From    State
	To      State
	Err     error
	Elapsed time.Duration
}

// Observer receives transitions synchronously. It must not block.
type Observer func(Transition)

// Result is returned by a committed mutation.
type Result struct {
	Post       models.Post
	TotalPosts int
	Revision   string
	Commit     string
}

// Orchestrator runs mutations against one store path.
type Orchestrator struct {
	store           blob.Store
	defaultCategory string
	now             func() time.Time
	observers       []Observer
	createMissing   bool
	queue           *queue
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver subscribes fn to state transitions.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, fn) }
}

// WithClock replaces time.Now for generated ids and dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithCreateIfMissing treats a store without a document as an empty
// document and creates it on the first write.
func WithCreateIfMissing() Option {
	return func(o *Orchestrator) { o.createMissing = true }
}

// WithSerializedWrites runs every cycle of this Orchestrator on a single
// goroutine. The revision check still applies, so writers in other
// processes are detected as before.
func WithSerializedWrites() Option {
	return func(o *Orchestrator) { o.queue = newQueue() }
}

// New returns an Orchestrator writing to store.
func New(store blob.Store, defaultCategory string, opts ...Option) *Orchestrator {
	o := &Orchestrator{store: store, defaultCategory: defaultCategory, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Close stops the write queue, if any. Pending cycles finish first.
func (o *Orchestrator) Close() {
	if o.queue != nil {
		o.queue.close()
	}
}

// AddPost normalizes in and prepends it to the document.
func (o *Orchestrator) AddPost(ctx context.Context, in transform.Input, profile transform.Profile) (Result, error) {
	opts := transform.OptionsFor(profile, o.defaultCategory)
	opts.Now = o.now

	return o.run(ctx, OpAdd, func(c *cycle) (models.Post, string, error) {
		c.enter(StateTransforming)
		post, err := transform.Normalize(in, opts)
		if err != nil {
			return models.Post{}, "", err
		}

		post.Category = reconcile.Canonical(post.Category, c.doc.Categories)
		c.doc.Categories = reconcile.Ensure(post.Category, c.doc.Categories)
		c.doc.Posts = append([]models.Post{post}, c.doc.Posts...)

		msg := "Add new blog post: " + post.Title
		if profile == transform.ProfileWebhook {
			msg += " (via n8n)"
		}
		return post, msg, nil
	})
}

// DeletePost removes the first post with the given id.
func (o *Orchestrator) DeletePost(ctx context.Context, id string) (Result, error) {
	return o.run(ctx, OpDelete, func(c *cycle) (models.Post, string, error) {
		i := c.doc.FindPost(id)
		if i < 0 {
			return models.Post{}, "", fmt.Errorf("delete %q: %w", id, ErrPostNotFound)
		}
		post := c.doc.Posts[i]
		posts := make([]models.Post, 0, len(c.doc.Posts)-1)
		posts = append(posts, c.doc.Posts[:i]...)
		c.doc.Posts = append(posts, c.doc.Posts[i+1:]...)
		return post, "Delete blog post: " + post.Title, nil
	})
}

// IncrementView adds one to the display view count of a post.
func (o *Orchestrator) IncrementView(ctx context.Context, id string) (Result, error) {
	return o.run(ctx, OpIncrement, func(c *cycle) (models.Post, string, error) {
		i := c.doc.FindPost(id)
		if i < 0 {
			return models.Post{}, "", fmt.Errorf("increment view %q: %w", id, ErrPostNotFound)
		}
		posts := append([]models.Post(nil), c.doc.Posts...)
		posts[i].Views = models.FormatViews(models.ParseViews(posts[i].Views) + 1)
		c.doc.Posts = posts
		post := posts[i]
		return post, fmt.Sprintf("Increment view count for %q to %s", post.Title, post.Views), nil
	})
}

// mutation edits c.doc and returns the affected post and audit message.
type mutation func(c *cycle) (models.Post, string, error)

// cycle is the state of one run.
type cycle struct {
	o     *Orchestrator
	op    Op
	state State
	start time.Time
	doc   models.Document
}

func (c *cycle) enter(s State) {
	c.o.notify(Transition{Op: c.op, From: c.state, To: s, Elapsed: time.Since(c.start)})
	c.state = s
}

func (c *cycle) fail(err error) error {
	c.o.notify(Transition{Op: c.op, From: c.state, To: StateFailed, Err: err, Elapsed: time.Since(c.start)})
	c.state = StateFailed
	slog.Warn("blog mutation failed", "op", c.op, "error", err)
	return err
}

func (o *Orchestrator) run(ctx context.Context, op Op, m mutation) (Result, error) {
	if o.queue != nil {
		return o.queue.do(ctx, func() (Result, error) { return o.cycle(ctx, op, m) })
	}
	return o.cycle(ctx, op, m)
}

func (o *Orchestrator) cycle(ctx context.Context, op Op, m mutation) (Result, error) {
	c := &cycle{o: o, op: op, state: StateIdle, start: time.Now()}

	c.enter(StateFetching)
	snap, err := o.store.Fetch(ctx)
	switch {
	case err == nil:
		c.doc, err = models.DecodeDocument(snap.Content)
		if err != nil {
			return Result{}, c.fail(fmt.Errorf("%w: %w: %v", ErrFetch, blob.ErrMalformed, err))
		}
	case o.createMissing && errors.Is(err, blob.ErrNotFound):
		c.doc = models.Empty()
		snap.Revision = ""
	default:
		return Result{}, c.fail(fmt.Errorf("%w: %w", ErrFetch, err))
	}

	post, msg, err := m(c)
	if err != nil {
		return Result{}, c.fail(err)
	}

	c.enter(StateReconciling)
	c.doc.Categories = reconcile.Reconcile(c.doc.Posts, c.doc.Categories)

	content, err := models.EncodeDocument(c.doc)
	if err != nil {
		return Result{}, c.fail(fmt.Errorf("%w: %v", ErrWrite, err))
	}

	c.enter(StateWriting)
	wr, err := o.store.Write(ctx, content, snap.Revision, msg)
	if err != nil {
		if errors.Is(err, blob.ErrRevisionMismatch) {
			return Result{}, c.fail(fmt.Errorf("%w: %w", ErrConflict, err))
		}
		return Result{}, c.fail(fmt.Errorf("%w: %w", ErrWrite, err))
	}

	c.enter(StateCommitted)
	slog.Info("blog document committed",
		"op", op,
		"post_id", post.ID,
		"total_posts", len(c.doc.Posts),
		"revision", wr.Revision,
		"commit", wr.Commit,
	)
	return Result{Post: post, TotalPosts: len(c.doc.Posts), Revision: wr.Revision, Commit: wr.Commit}, nil
}

func (o *Orchestrator) notify(t Transition) {
	for _, fn := range o.observers {
		fn(t)
	}
}
