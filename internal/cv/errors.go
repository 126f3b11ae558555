package cv

import "errors"

var (
	ErrNotFound         = errors.New("cv not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrQuotaExceeded    = errors.New("max elements reached")
	ErrNotApproved      = errors.New("user is not approved or does not exist")
	ErrPermissionDenied = errors.New("user has no permission for this cv")
)

// UploadError wraps an unexpected failure during the upload sequence. The
// cause stays attached for diagnostics but callers only see a generic
// upload failure.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return "cv upload failed" }

func (e *UploadError) Unwrap() error { return e.Err }

const (
	codeValidation       = "validation_error"
	codeNotApproved      = "account_not_approved"
	codeQuotaExceeded    = "quota_exceeded"
	codeNotFound         = "not_found"
	codePermissionDenied = "permission_denied"
	codeStorage          = "storage_error"
	codeUploadFailed     = "upload_failed"
)
