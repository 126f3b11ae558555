package cv

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

const pdfContentType = "application/pdf"

// ValidationError reports why an upload was rejected before any storage
// work ran.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type uploadValidator func(fileName, contentType string, data []byte) *ValidationError

// uploadValidators is the ordered pipeline run by the boundary layer before
// the storage manager. The first failure wins.
var uploadValidators = []uploadValidator{
	validatePDFName,
	validateContentType,
	validateFileNameLength,
	validateReadablePDF,
}

// ValidateUpload runs the upload validation pipeline.
func ValidateUpload(fileName, contentType string, data []byte) error {
	for _, validate := range uploadValidators {
		if verr := validate(fileName, contentType, data); verr != nil {
			return verr
		}
	}
	return nil
}

func validatePDFName(fileName, _ string, _ []byte) *ValidationError {
	if !strings.HasSuffix(strings.ToLower(fileName), extension) {
		return &ValidationError{Code: "not_pdf", Message: "the file is not pdf"}
	}
	return nil
}

func validateContentType(_, contentType string, _ []byte) *ValidationError {
	if !strings.EqualFold(contentType, pdfContentType) {
		return &ValidationError{Code: "invalid_type", Message: "invalid content type"}
	}
	return nil
}

func validateFileNameLength(fileName, _ string, _ []byte) *ValidationError {
	if len(fileName) >= maxFileNameLen {
		return &ValidationError{Code: "file_name_too_long", Message: "file name is too long"}
	}
	return nil
}

func validateReadablePDF(fileName, _ string, data []byte) *ValidationError {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &ValidationError{Code: "not_readable", Message: "the file " + fileName + " cannot be read"}
	}
	if reader.NumPage() == 0 {
		return &ValidationError{Code: "empty_pdf", Message: "empty file"}
	}
	return nil
}
