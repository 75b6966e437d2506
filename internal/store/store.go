// Package store defines the contract of the remote collection store:
// a path-addressable document store which pushes the full value at a
// subscribed path on every change. The back-office only consumes this
// contract; the store itself (replication, persistence, auth) is an
// external service.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the path holds no value.
	ErrNotFound = errors.New("path not found")

	// ErrClosed is returned when an operation is attempted on a closed client.
	ErrClosed = errors.New("store client closed")
)

// Handler receives the full JSON value at the subscribed path. A nil or
// JSON-null payload means the path currently holds no value. Handlers
// are invoked sequentially per subscription.
type Handler func(data json.RawMessage)

// ErrorHandler receives stream-level failures (disconnects, rejected
// reads). The subscription keeps retrying after calling it; it exists so
// consumers can surface a non-fatal error indicator.
type ErrorHandler func(err error)

// CancelFunc tears a subscription down. After it returns no further
// handler invocations are made. Calling it more than once is a no-op.
type CancelFunc func()

// Store is the remote collection store contract.
//
// No ordering is guaranteed across different paths: subscriptions to
// sibling collections converge independently, and consumers must
// tolerate transient dangling references between them.
type Store interface {
	// Subscribe starts pushing the value at path to onSnapshot,
	// beginning with the current value. It returns once the stream is
	// established.
	Subscribe(ctx context.Context, path string, onSnapshot Handler, onError ErrorHandler) (CancelFunc, error)

	// Get reads the value at path once.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Patch merges the given fields into the object at path, leaving
	// all other fields untouched. Last write wins; there are no
	// version checks.
	Patch(ctx context.Context, path string, fields map[string]any) error
}
