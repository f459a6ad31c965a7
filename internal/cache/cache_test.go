// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, viewKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestViewGuardFirstThenRepeat(t *testing.T) {
	client := testValkeyClient(t)
	g := NewViewGuard(client, time.Minute)
	ctx := context.Background()

	if !g.First(ctx, "post-1", "10.0.0.1") {
		t.Fatal("first view should count")
	}
	if g.First(ctx, "post-1", "10.0.0.1") {
		t.Error("repeat view should not count")
	}
	if !g.First(ctx, "post-1", "10.0.0.2") {
		t.Error("another viewer should count")
	}
	if !g.First(ctx, "post-2", "10.0.0.1") {
		t.Error("another post should count")
	}
}

func TestViewGuardForget(t *testing.T) {
	client := testValkeyClient(t)
	g := NewViewGuard(client, time.Minute)
	ctx := context.Background()

	g.First(ctx, "post-1", "viewer")
	g.Forget(ctx, "post-1", "viewer")
	if !g.First(ctx, "post-1", "viewer") {
		t.Error("forgotten view should count again")
	}
}

func TestViewGuardWindowExpires(t *testing.T) {
	client := testValkeyClient(t)
	g := NewViewGuard(client, 50*time.Millisecond)
	ctx := context.Background()

	g.First(ctx, "post-1", "viewer")
	time.Sleep(120 * time.Millisecond)
	if !g.First(ctx, "post-1", "viewer") {
		t.Error("view after window should count")
	}
}

func TestViewGuardErrorCountsView(t *testing.T) {
	// Nothing listens on port 1.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	g := NewViewGuard(client, time.Minute)
	if !g.First(context.Background(), "post-1", "viewer") {
		t.Error("unreachable valkey should count the view")
	}
}

func TestViewKey(t *testing.T) {
	if got := ViewKey("42", "1.2.3.4"); got != "view:42:1.2.3.4" {
		t.Errorf("ViewKey = %q", got)
	}
}

func TestDefaultViewWindow(t *testing.T) {
	if g := NewViewGuard(nil, 0); g.window != DefaultViewWindow {
		t.Errorf("view window = %v", g.window)
	}
}
