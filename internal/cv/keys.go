package cv

import "strings"

const (
	slotMain    = "main"
	slotNotMain = "notMain"
	extension   = ".pdf"
)

// SlotName returns the wire name of a slot.
func SlotName(isMain bool) string {
	if isMain {
		return slotMain
	}
	return slotNotMain
}

// KeyResolver maps a (owner, slot) pair to its canonical object key.
// Resolution is deterministic and side-effect-free: the same inputs always
// produce the same key, which is what makes finding the current occupant of
// a slot possible via a prefix search.
type KeyResolver struct {
	// FolderTemplate is a per-owner folder pattern with a "{0}" placeholder,
	// e.g. "users/{0}/cv/".
	FolderTemplate string
}

// Root returns the template's fixed leading segment shared by all owners,
// e.g. "users/" for "users/{0}/cv/". Used to scope maintenance listings.
func (r KeyResolver) Root() string {
	if idx := strings.Index(r.FolderTemplate, "{0}"); idx >= 0 {
		return r.FolderTemplate[:idx]
	}
	return r.FolderTemplate
}

// Folder returns the owner's folder.
func (r KeyResolver) Folder(ownerID string) string {
	return strings.ReplaceAll(r.FolderTemplate, "{0}", ownerID)
}

// SlotPrefix returns the prefix identifying a slot's occupant.
func (r KeyResolver) SlotPrefix(ownerID string, isMain bool) string {
	return r.Folder(ownerID) + SlotName(isMain)
}

// Key returns the canonical object key for a slot.
func (r KeyResolver) Key(ownerID string, isMain bool) string {
	return r.SlotPrefix(ownerID, isMain) + extension
}

// FilePath builds the fully-qualified locator stored in the metadata record:
// <storeBaseURL><bucket>/<key>.
func FilePath(storeBaseURL, bucket, key string) string {
	return storeBaseURL + bucket + "/" + key
}
