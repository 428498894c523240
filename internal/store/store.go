// Package store persists the resources served by the stub KuFlow server.
// Documents are stored as raw JSON, keyed by kind and id, and listed in
// insertion order.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("resource not found")

// Kind names a resource collection.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindWorker         Kind = "worker"
	KindPrincipal      Kind = "principal"
	KindProcess        Kind = "process"
	KindTask           Kind = "task"
	KindKmsKey         Kind = "kms-key"
)

type Store interface {
	// Create stores data under id when id is unused. It reports false and
	// keeps the existing document when id is already taken.
	Create(ctx context.Context, kind Kind, id string, data []byte) (bool, error)

	// Put stores data under id, replacing any existing document.
	Put(ctx context.Context, kind Kind, id string, data []byte) error

	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)

	List(ctx context.Context, kind Kind) ([][]byte, error)

	Close() error
}
