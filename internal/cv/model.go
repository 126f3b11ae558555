package cv

import "time"

// UserCV is the persisted record describing one stored CV document.
// At most one record exists per (OwnerID, IsMain) pair; FilePath is the
// fully-qualified locator of the backing object and is unique.
type UserCV struct {
	ID         string
	OwnerID    string
	FilePath   string
	IsMain     bool
	FileName   string
	UploadedAt time.Time
}
