// Package session provides the per-visitor key/value store backing the
// shopping cart. Values are opaque byte payloads; callers own the
// serialization.
package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a session has no value under the
// requested name.
var ErrNotFound = errors.New("session: value not found")

// Store is a namespaced key/value store scoped to a session ID.
//
// Writes must be durable before Set returns; a cart mutation that has
// been acknowledged survives the request that made it.
type Store interface {
	// Get returns the value stored under name for the session, or
	// ErrNotFound.
	Get(ctx context.Context, sessionID, name string) ([]byte, error)

	// Set stores value under name and refreshes the session lifetime.
	Set(ctx context.Context, sessionID, name string, value []byte) error

	// Delete removes the value under name. Deleting an absent value is
	// a no-op.
	Delete(ctx context.Context, sessionID, name string) error
}
