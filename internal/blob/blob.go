// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blob defines the versioned blob store contract shared by every
// backend. A store holds one document at a fixed path and guards writes
// with an opaque revision token: a write names the revision it was based
// on and is rejected if the store has moved on.
package blob

import (
	"context"
	"errors"
	"net"
)

// Error taxonomy. Backends wrap these so callers can match with errors.Is.
var (
	ErrNotFound          = errors.New("blob not found")
	ErrUnauthorized      = errors.New("blob store rejected credentials")
	ErrTransient         = errors.New("blob store temporarily unavailable")
	ErrMalformed         = errors.New("blob content is not valid JSON")
	ErrRevisionMismatch  = errors.New("blob revision mismatch")
	ErrCredentialMissing = errors.New("blob store credential not configured")
)

// Snapshot is the content of the document together with the revision it
// was read at.
type Snapshot struct {
	Content  []byte
	Revision string
}

// WriteResult describes a committed write. Commit is the backend's audit
// identifier (a git commit sha, a history row id) and may be empty.
type WriteResult struct {
	Revision string
	Commit   string
}

// Store is a single-document versioned blob store.
//
// Write with an empty revision creates the document and fails with
// ErrRevisionMismatch if it already exists.
type Store interface {
	Fetch(ctx context.Context) (Snapshot, error)
	Write(ctx context.Context, content []byte, revision, message string) (WriteResult, error)
}

// IsTimeout reports whether err came from an expired deadline or a network
// timeout. Backends use it to classify failures as ErrTransient.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
