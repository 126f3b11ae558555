package cv

import (
	"context"
	"errors"
	"time"

	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/metrics"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/telemetry"
)

// SweepOrphans deletes stored objects that no metadata record references.
// Orphans are produced only by partial upload failures (object written,
// metadata commit failed). Objects younger than grace are skipped so an
// upload that is still between its put and its commit is never deleted.
func (s *Service) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	infos, err := s.Store.List(ctx, s.keys.Root())
	if err != nil {
		return 0, err
	}

	cutoff := s.now().UTC().Add(-grace)
	removed := 0
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if info.LastModified.After(cutoff) {
			continue
		}

		_, err := s.Repo.GetByPath(ctx, FilePath(s.cfg.StoreBaseURL, s.cfg.Bucket, info.Key))
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return removed, err
		}

		if err := s.removeObject(ctx, info.Key); err != nil {
			return removed, err
		}
		removed++
		telemetry.Info("cv.sweep.orphan_removed", map[string]any{
			"key":  info.Key,
			"size": info.Size,
		})
	}

	if removed > 0 {
		metrics.AddOrphansSwept(removed)
	}
	return removed, nil
}

// RunSweeper runs SweepOrphans on a fixed interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepOrphans(ctx, grace)
			if err != nil {
				telemetry.Error("cv.sweep.failed", map[string]any{"err": err.Error()})
				continue
			}
			if removed > 0 {
				telemetry.Info("cv.sweep.complete", map[string]any{"removed": removed})
			}
		}
	}
}
