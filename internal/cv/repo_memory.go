package cv

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of CVRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]UserCV // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]UserCV)}
}

// Create stores a new record.
func (r *MemoryRepo) Create(ctx context.Context, rec UserCV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.ID] = rec
	return nil
}

// Delete removes a record by id.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// GetByID returns a record by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (UserCV, error) {
	if err := ctx.Err(); err != nil {
		return UserCV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok {
		return UserCV{}, ErrNotFound
	}
	return rec, nil
}

// GetByOwnerAndSlot returns the record occupying (ownerID, isMain).
func (r *MemoryRepo) GetByOwnerAndSlot(ctx context.Context, ownerID string, isMain bool) (UserCV, error) {
	if err := ctx.Err(); err != nil {
		return UserCV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.data {
		if rec.OwnerID == ownerID && rec.IsMain == isMain {
			return rec, nil
		}
	}
	return UserCV{}, ErrNotFound
}

// GetByPath returns the record referencing filePath.
func (r *MemoryRepo) GetByPath(ctx context.Context, filePath string) (UserCV, error) {
	if err := ctx.Err(); err != nil {
		return UserCV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.data {
		if rec.FilePath == filePath {
			return rec, nil
		}
	}
	return UserCV{}, ErrNotFound
}

// ListByOwner lists an owner's records, main slot first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]UserCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []UserCV
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsMain != out[j].IsMain {
			return out[i].IsMain
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

// CountByOwner counts an owner's records.
func (r *MemoryRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, rec := range r.data {
		if rec.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// Replace removes the current slot occupant and inserts rec.
func (r *MemoryRepo) Replace(ctx context.Context, rec UserCV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if existing.OwnerID == rec.OwnerID && existing.IsMain == rec.IsMain {
			delete(r.data, id)
		}
	}
	r.data[rec.ID] = rec
	return nil
}

var _ CVRepo = (*MemoryRepo)(nil)
