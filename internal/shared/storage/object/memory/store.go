package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/telemetry"
)

type storedObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// Store is an in-memory ObjectStore used in dev mode and tests.
type Store struct {
	mu      sync.RWMutex
	objects map[string]storedObject
	bucket  bool
	baseURL string
	now     func() time.Time
}

// New constructs an empty in-memory store. baseURL seeds the host part of
// presigned URLs so they look like real store links.
func New(baseURL string) *Store {
	if baseURL == "" {
		baseURL = "http://localhost:9000/"
	}
	return &Store{
		objects: make(map[string]storedObject),
		baseURL: baseURL,
		now:     time.Now,
	}
}

// EnsureBucket marks the bucket as present.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.bucket = true
	s.mu.Unlock()
	return nil
}

// FindByPrefix returns the smallest key under prefix or ErrNotFound.
func (s *Store) FindByPrefix(ctx context.Context, prefix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "", object.ErrNotFound
	}
	sort.Strings(keys)
	if len(keys) > 1 {
		telemetry.Error("object.prefix.multiple_occupants", map[string]any{
			"prefix":  prefix,
			"matches": len(keys),
			"picked":  keys[0],
		})
	}
	return keys[0], nil
}

// Put stores the object content under key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return &object.StorageError{Op: "put", Key: key, Err: err}
	}
	s.mu.Lock()
	s.objects[key] = storedObject{
		data:         data,
		contentType:  contentType,
		lastModified: s.now().UTC(),
	}
	s.mu.Unlock()
	return nil
}

// Remove deletes the object. Missing keys are ignored.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// PresignGet fabricates a time-scoped URL for key.
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	expires := s.now().UTC().Add(ttl).Unix()
	return fmt.Sprintf("%s%s?X-Amz-Expires=%d&X-Amz-Signature=%s",
		s.baseURL, key, expires, url.QueryEscape("memory")), nil
}

// List returns all objects under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]object.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []object.Info
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, object.Info{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.lastModified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Has reports whether an object exists at key. Test helper.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

// SetClock overrides the store clock. Test helper.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

var _ object.ObjectStore = (*Store)(nil)
