package cv

import "context"

// CVRepo defines persistence operations for CV records.
type CVRepo interface {
	Create(ctx context.Context, rec UserCV) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (UserCV, error)
	GetByOwnerAndSlot(ctx context.Context, ownerID string, isMain bool) (UserCV, error)
	GetByPath(ctx context.Context, filePath string) (UserCV, error)
	ListByOwner(ctx context.Context, ownerID string) ([]UserCV, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// Replace removes whatever record occupies rec's (owner, slot) pair and
	// inserts rec, atomically at the metadata store boundary.
	Replace(ctx context.Context, rec UserCV) error
}
