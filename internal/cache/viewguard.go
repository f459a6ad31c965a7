// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewKeyPrefix = "view:"

	// DefaultViewWindow is how long a viewer's view of a post is remembered.
	DefaultViewWindow = 30 * time.Minute
)

// ViewGuard remembers recent (post, viewer) pairs so a reader refreshing a
// page does not rewrite the document on every load.
type ViewGuard struct {
	client *redis.Client
	window time.Duration
}

// NewViewGuard creates a guard backed by the given Valkey client.
func NewViewGuard(client *redis.Client, window time.Duration) *ViewGuard {
	if window == 0 {
		window = DefaultViewWindow
	}
	return &ViewGuard{client: client, window: window}
}

// First reports whether this is the viewer's first view of postID within
// the window. Valkey errors count the view.
func (g *ViewGuard) First(ctx context.Context, postID, viewer string) bool {
	key := ViewKey(postID, viewer)
	ok, err := g.client.SetNX(ctx, key, 1, g.window).Result()
	if err != nil {
		slog.Warn("view guard error", "post_id", postID, "error", err)
		return true
	}
	if !ok {
		slog.Debug("repeat view ignored", "post_id", postID)
	}
	return ok
}

// Forget drops the remembered view, used when the increment itself failed.
func (g *ViewGuard) Forget(ctx context.Context, postID, viewer string) {
	if err := g.client.Del(ctx, ViewKey(postID, viewer)).Err(); err != nil {
		slog.Warn("view guard forget error", "post_id", postID, "error", err)
	}
}

// ViewKey returns the Valkey key for a (post, viewer) pair.
func ViewKey(postID, viewer string) string {
	return viewKeyPrefix + postID + ":" + viewer
}
