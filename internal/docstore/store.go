// Package docstore is a minimal scoped document collection: documents live under a
// path-like Scope, carry an opaque id assigned on Add, and a version that every write
// increments. Backends: in-memory, MongoDB, SQL (gorm) and Redis.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by a conditional Update whose expected version no longer
	// matches the stored one.
	ErrConflict = errors.New("document version conflict")
)

// AnyVersion disables the version check of Update.
const AnyVersion int64 = -1

// Scope identifies a collection, e.g. "users/u1/achievements".
type Scope string

// Join builds a scope from path segments.
func Join(segments ...string) Scope {
	return Scope(strings.Join(segments, "/"))
}

func (s Scope) String() string {
	return string(s)
}

// Fields is the body of a document keyed by top-level field name.
type Fields map[string]json.RawMessage

// Clone returns a shallow copy whose values do not alias the receiver's byte slices.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Merge overwrites the receiver's keys with the ones present in patch.
func (f Fields) Merge(patch Fields) {
	for k, v := range patch {
		f[k] = append(json.RawMessage(nil), v...)
	}
}

type Document struct {
	ID      string
	Version int64
	Fields  Fields
}

// Store is implemented by every backend. All methods are safe for concurrent use.
type Store interface {
	// Get returns ErrNotFound when id does not exist in scope.
	Get(ctx context.Context, scope Scope, id string) (*Document, error)
	// List returns every document in scope in the backend's native order.
	List(ctx context.Context, scope Scope) ([]Document, error)
	// Add stores fields under a freshly generated id with version 1.
	Add(ctx context.Context, scope Scope, fields Fields) (*Document, error)
	// Set creates or replaces the document at id.
	Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error)
	// Update merges fields into the stored document. With expectedVersion other than
	// AnyVersion the write only happens if the stored version matches, otherwise
	// ErrConflict. Returns the merged document.
	Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, scope Scope, id string) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
