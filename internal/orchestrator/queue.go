// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package orchestrator

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned for cycles submitted after Close.
var ErrClosed = errors.New("orchestrator closed")

type job struct {
	ctx  context.Context
	fn   func() (Result, error)
	done chan jobResult
}

type jobResult struct {
	res Result
	err error
}

// queue runs submitted cycles one at a time on its own goroutine.
type queue struct {
	jobs   chan job
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newQueue() *queue {
	q := &queue{jobs: make(chan job), quit: make(chan struct{})}
	q.wg.Add(1)
	go q.loop()
	return q
}

func (q *queue) loop() {
	defer q.wg.Done()
	for {
		select {
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.done <- jobResult{err: err}
				continue
			}
			res, err := j.fn()
			j.done <- jobResult{res: res, err: err}
		case <-q.quit:
			return
		}
	}
}

// do blocks until fn has run on the queue goroutine or ctx ends first.
func (q *queue) do(ctx context.Context, fn func() (Result, error)) (Result, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return Result{}, ErrClosed
	}
	j := job{ctx: ctx, fn: fn, done: make(chan jobResult, 1)}
	select {
	case q.jobs <- j:
		q.mu.RUnlock()
	case <-ctx.Done():
		q.mu.RUnlock()
		return Result{}, ctx.Err()
	}

	r := <-j.done
	return r.res, r.err
}

// close waits for the running cycle, then stops the goroutine.
func (q *queue) close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.quit)
		q.wg.Wait()
	})
}
