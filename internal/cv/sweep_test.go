package cv

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSweepOrphansRemovesUnreferencedObjects(t *testing.T) {
	svc, store, _ := newTestService(t, Config{})
	ctx := context.Background()

	// Backdate writes so the grace window does not protect them.
	past := time.Now().Add(-2 * time.Hour)
	store.SetClock(func() time.Time { return past })

	if err := svc.Upload(ctx, "user-1", pdfUpload(true)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	orphanKey := "users/user-2/cv/main.pdf"
	if err := store.Put(ctx, orphanKey, bytes.NewReader([]byte(minimalPDF)), int64(len(minimalPDF)), "application/pdf"); err != nil {
		t.Fatalf("store put: %v", err)
	}

	removed, err := svc.SweepOrphans(ctx, time.Hour)
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 orphan removed, got %d", removed)
	}
	if store.Has(orphanKey) {
		t.Fatal("expected orphan to be deleted")
	}
	if !store.Has("users/user-1/cv/main.pdf") {
		t.Fatal("expected referenced object to survive")
	}
}

func TestSweepOrphansSkipsRecentObjects(t *testing.T) {
	svc, store, _ := newTestService(t, Config{})
	ctx := context.Background()

	// A fresh object might be mid-upload, between its put and its commit.
	orphanKey := "users/user-2/cv/main.pdf"
	if err := store.Put(ctx, orphanKey, bytes.NewReader([]byte(minimalPDF)), int64(len(minimalPDF)), "application/pdf"); err != nil {
		t.Fatalf("store put: %v", err)
	}

	removed, err := svc.SweepOrphans(ctx, time.Hour)
	if err != nil {
		t.Fatalf("SweepOrphans: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed inside grace, got %d", removed)
	}
	if !store.Has(orphanKey) {
		t.Fatal("expected recent object to survive")
	}
}
