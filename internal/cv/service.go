package cv

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yaroslaavl/recruiter-cv-service/internal/approval"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/metrics"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/telemetry"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/util"
)

const (
	maxFileNameLen  = 100
	presignTTL      = 30 * time.Minute
	retryBaseDelay  = 200 * time.Millisecond
	defaultAttempts = 3
)

// Config holds slot-storage policy and store coordinates.
type Config struct {
	Bucket         string
	StoreBaseURL   string
	FolderTemplate string
	MaxElements    int

	// QuotaCountsReplacements restores the legacy quota behavior where a
	// replace-upload into an occupied slot is rejected at capacity even
	// though it does not grow the owner's record count.
	QuotaCountsReplacements bool

	// StorageAttempts bounds retries of transient object-store failures.
	StorageAttempts int
}

// Service orchestrates slot uploads, removals and retrieval. It holds no
// per-request state; slot mutations are serialized per (owner, slot).
type Service struct {
	Store    object.ObjectStore
	Repo     CVRepo
	Approval approval.Checker

	cfg   Config
	keys  KeyResolver
	slots slotLocks

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service.
func NewService(store object.ObjectStore, repo CVRepo, checker approval.Checker, cfg Config) *Service {
	if cfg.StorageAttempts <= 0 {
		cfg.StorageAttempts = defaultAttempts
	}
	if cfg.FolderTemplate == "" {
		cfg.FolderTemplate = "users/{0}/cv/"
	}
	return &Service{
		Store:    store,
		Repo:     repo,
		Approval: checker,
		cfg:      cfg,
		keys:     KeyResolver{FolderTemplate: cfg.FolderTemplate},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// UploadInput carries a validated upload request. Content must be seekable:
// a failed storage attempt may consume part of the body, and every retry
// rewinds to the start before uploading.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
	IsMain      bool
}

// Upload stores the document under the owner's slot, replacing any previous
// occupant, and persists the metadata record.
//
// Ordering is deliberate: delete-old, upload-new, commit-metadata. A failure
// before the final commit leaves the slot empty rather than inconsistent; a
// commit failure after a successful upload orphans the new object, which the
// reconciliation sweep cleans up later.
func (s *Service) Upload(ctx context.Context, ownerID string, in UploadInput) error {
	if err := s.checkApproved(ctx, ownerID); err != nil {
		return err
	}
	if len(in.FileName) >= maxFileNameLen {
		return ErrInvalidInput
	}
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return ErrInvalidInput
	}
	// The stored display name drops the extension.
	fileName = strings.TrimSuffix(fileName, extension)

	unlock := s.slots.lock(ownerID, in.IsMain)
	defer unlock()

	if err := s.checkQuota(ctx, ownerID, in.IsMain); err != nil {
		return err
	}

	key := s.keys.Key(ownerID, in.IsMain)
	prefix := s.keys.SlotPrefix(ownerID, in.IsMain)

	occupant, err := s.findOccupant(ctx, prefix)
	if err != nil {
		return err
	}
	if occupant != "" {
		if err := s.removeObject(ctx, occupant); err != nil {
			return err
		}
	}

	if err := s.withRetry(ctx, "ensure bucket", func() error {
		return s.Store.EnsureBucket(ctx)
	}); err != nil {
		return err
	}

	if err := s.withRetry(ctx, "put", func() error {
		if _, err := in.Content.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return s.Store.Put(ctx, key, in.Content, in.Size, in.ContentType)
	}); err != nil {
		return err
	}

	rec := UserCV{
		ID:         s.newID(),
		OwnerID:    ownerID,
		FilePath:   FilePath(s.cfg.StoreBaseURL, s.cfg.Bucket, key),
		IsMain:     in.IsMain,
		FileName:   fileName,
		UploadedAt: s.now().UTC(),
	}
	if err := s.Repo.Replace(ctx, rec); err != nil {
		// The object is already in the store with no record referencing it.
		telemetry.Error("cv.upload.metadata_commit_failed", map[string]any{
			"owner_id": ownerID,
			"slot":     SlotName(in.IsMain),
			"key":      key,
			"err":      err.Error(),
		})
		metrics.IncUploadFailed()
		return &UploadError{Err: err}
	}

	metrics.IncUploadCompleted()
	telemetry.Info("cv.upload.complete", map[string]any{
		"owner_id": ownerID,
		"slot":     SlotName(in.IsMain),
		"cv_id":    rec.ID,
		"replaced": occupant != "",
	})
	return nil
}

// Remove deletes the slot's object and metadata record.
func (s *Service) Remove(ctx context.Context, ownerID string, isMain bool) error {
	if err := s.checkApproved(ctx, ownerID); err != nil {
		return err
	}

	unlock := s.slots.lock(ownerID, isMain)
	defer unlock()

	rec, err := s.Repo.GetByOwnerAndSlot(ctx, ownerID, isMain)
	if err != nil {
		return err
	}
	// The lookup is already scoped by owner; re-checked as a defense against
	// repo implementations that are not.
	if rec.OwnerID != ownerID {
		return ErrPermissionDenied
	}

	occupant, err := s.findOccupant(ctx, s.keys.SlotPrefix(ownerID, isMain))
	if err != nil {
		return err
	}
	if occupant != "" {
		if err := s.removeObject(ctx, occupant); err != nil {
			return err
		}
	} else {
		telemetry.Error("cv.remove.object_missing", map[string]any{
			"owner_id": ownerID,
			"slot":     SlotName(isMain),
			"cv_id":    rec.ID,
		})
	}

	if err := s.Repo.Delete(ctx, rec.ID); err != nil {
		return err
	}

	metrics.IncRemoved()
	telemetry.Info("cv.remove.complete", map[string]any{
		"owner_id": ownerID,
		"slot":     SlotName(isMain),
		"cv_id":    rec.ID,
	})
	return nil
}

// CandidateURL returns a presigned GET URL for the caller's own slot
// occupant. The record reachable at the resolved path must belong to the
// caller.
func (s *Service) CandidateURL(ctx context.Context, callerID, cvID string, isMain bool) (string, error) {
	if _, err := s.Repo.GetByID(ctx, cvID); err != nil {
		return "", err
	}
	if err := s.checkApproved(ctx, callerID); err != nil {
		return "", err
	}

	occupant, err := s.findOccupant(ctx, s.keys.SlotPrefix(callerID, isMain))
	if err != nil {
		return "", err
	}
	if occupant == "" {
		return "", ErrNotFound
	}

	rec, err := s.Repo.GetByPath(ctx, FilePath(s.cfg.StoreBaseURL, s.cfg.Bucket, occupant))
	if err != nil {
		return "", err
	}
	if rec.OwnerID != callerID {
		return "", ErrPermissionDenied
	}

	return s.presign(ctx, occupant)
}

// RecruiterURL returns a presigned GET URL for the record's owner's current
// slot occupant. Ownership is deliberately not checked here: the recruiter
// path trusts the INTERNAL_SERVICE role gate at the boundary.
func (s *Service) RecruiterURL(ctx context.Context, cvID string) (string, error) {
	rec, err := s.Repo.GetByID(ctx, cvID)
	if err != nil {
		return "", err
	}

	occupant, err := s.findOccupant(ctx, s.keys.SlotPrefix(rec.OwnerID, rec.IsMain))
	if err != nil {
		return "", err
	}
	if occupant == "" {
		return "", ErrNotFound
	}

	return s.presign(ctx, occupant)
}

// Summary is the listing view of a record.
type Summary struct {
	ID         string
	IsMain     bool
	UploadedAt time.Time
}

// List returns the caller's records, main slot first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Summary, error) {
	recs, err := s.Repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Summary{ID: rec.ID, IsMain: rec.IsMain, UploadedAt: rec.UploadedAt})
	}
	return out, nil
}

func (s *Service) checkApproved(ctx context.Context, ownerID string) error {
	approved, err := s.Approval.IsApproved(ctx, ownerID)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotApproved
	}
	return nil
}

// checkQuota enforces the per-owner ceiling. By default a replacement of an
// occupied slot does not count toward the ceiling; the legacy behavior
// (reject any upload once count == MaxElements) sits behind
// QuotaCountsReplacements.
func (s *Service) checkQuota(ctx context.Context, ownerID string, isMain bool) error {
	count, err := s.Repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}

	if s.cfg.QuotaCountsReplacements {
		if count == s.cfg.MaxElements {
			return ErrQuotaExceeded
		}
		return nil
	}

	_, err = s.Repo.GetByOwnerAndSlot(ctx, ownerID, isMain)
	if err == nil {
		// Replacing an occupied slot never grows the count.
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if count >= s.cfg.MaxElements {
		return ErrQuotaExceeded
	}
	return nil
}

func (s *Service) findOccupant(ctx context.Context, prefix string) (string, error) {
	var key string
	err := s.withRetry(ctx, "find occupant", func() error {
		found, err := s.Store.FindByPrefix(ctx, prefix)
		if err != nil {
			return err
		}
		key = found
		return nil
	})
	if errors.Is(err, object.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *Service) removeObject(ctx context.Context, key string) error {
	return s.withRetry(ctx, "remove", func() error {
		return s.Store.Remove(ctx, key)
	})
}

func (s *Service) presign(ctx context.Context, key string) (string, error) {
	var link string
	err := s.withRetry(ctx, "presign", func() error {
		url, err := s.Store.PresignGet(ctx, key, presignTTL)
		if err != nil {
			return err
		}
		link = url
		return nil
	})
	if err != nil {
		return "", err
	}
	metrics.IncPresigned()
	return link, nil
}

// withRetry retries fn on transient storage errors with exponential backoff.
// Deterministic outcomes (ErrNotFound, context cancellation) are never
// retried.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	delay := retryBaseDelay
	var err error
	for attempt := 1; attempt <= s.cfg.StorageAttempts; attempt++ {
		err = fn()
		if err == nil || !object.IsStorage(err) {
			return err
		}
		if attempt == s.cfg.StorageAttempts {
			break
		}
		telemetry.Error("cv.storage.retry", map[string]any{
			"op":      op,
			"attempt": attempt,
			"err":     err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return err
}

// slotLocks serializes mutation of a single (owner, slot) pair. The scope is
// per-process; multi-instance deployments need a shared lock in front.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func (l *slotLocks) lock(ownerID string, isMain bool) func() {
	key := ownerID + "|" + SlotName(isMain)

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*slotLock)
	}
	entry, ok := l.locks[key]
	if !ok {
		entry = &slotLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
