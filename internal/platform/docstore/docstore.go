// Package docstore stores flat JSON-shaped records in named collections.
//
// Three backends share the Collection contract: MongoDB, a PostgreSQL JSONB
// table and an in-process map. Records are addressed by an opaque string id
// that the backend mints on insert when the caller leaves it empty.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-catalog/internal/shared"
)

// ErrNotFound is returned when no document matches the lookup.
var ErrNotFound = shared.ErrNotFound

// ErrInvalidField rejects lookups on field names that cannot be addressed safely.
var ErrInvalidField = errors.New("docstore: invalid field")

// Document is a record that knows its own id.
type Document[T any] interface {
	DocID() string
	WithDocID(id string) T
}

// Collection is the persistence contract consumed by domain repositories.
type Collection[T Document[T]] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	FindOne(ctx context.Context, field, value string) (T, error)
	Insert(ctx context.Context, doc T) (T, error)
	Replace(ctx context.Context, id string, doc T) error
	Delete(ctx context.Context, id string) error
}

// Pinger reports backend reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func validField(field string) error {
	if field == "" || len(field) > 64 {
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	for _, r := range field {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
	}
	return nil
}
