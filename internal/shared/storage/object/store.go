package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNotFound indicates the requested object does not exist. Absence is a
// valid outcome for lookups and is never reported as a StorageError.
var ErrNotFound = errors.New("object not found")

// StorageError wraps a backend failure (network, auth, 5xx) so callers can
// tell transient storage trouble apart from deterministic outcomes.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("object store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("object store %s key=%s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err originated in the storage backend.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Info describes a stored object.
type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the contract over a remote object store. Implementations
// must make Remove idempotent: deleting a missing key is not an error.
type ObjectStore interface {
	// EnsureBucket creates the backing bucket if absent.
	EnsureBucket(ctx context.Context) error

	// FindByPrefix returns the key of the object stored under prefix, or
	// ErrNotFound when no object matches. When more than one object matches
	// the lexicographically smallest key wins.
	FindByPrefix(ctx context.Context, prefix string) (string, error)

	// Put uploads object content, overwriting any existing object at key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Remove deletes an object. Removing a non-existent key succeeds.
	Remove(ctx context.Context, key string) error

	// PresignGet issues a time-scoped GET URL for key. The object's
	// existence is not verified.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// List returns all objects under prefix, used by maintenance sweeps.
	List(ctx context.Context, prefix string) ([]Info, error)
}
