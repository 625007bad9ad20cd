package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is reported before any request is made.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUploadFailed covers transport errors, non-2xx statuses, malformed
	// bodies and responses without a location.
	ErrUploadFailed = errors.New("upload failed")
	// ErrNoSelection is returned by pickers when the dialog is dismissed.
	ErrNoSelection = errors.New("no file selected")
	// ErrNotAccepted is returned by pickers for files outside the accept filter.
	ErrNotAccepted = errors.New("file type not accepted")

	errMissingLocation = errors.New("response has no location")
)

const MessageUploadFailed = "Upload failed"

// UploadError is the failure half of an upload result. Kind is one of
// ErrFileTooLarge or ErrUploadFailed; Cause keeps the underlying reason for
// logs.
type UploadError struct {
	Kind  error
	Cause error
}

func (e *UploadError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *UploadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func tooLarge(name string, size, limit int64) error {
	return &UploadError{
		Kind:  ErrFileTooLarge,
		Cause: fmt.Errorf("%s is %d bytes, limit is %d", name, size, limit),
	}
}

func uploadFailed(cause error) error {
	return &UploadError{Kind: ErrUploadFailed, Cause: cause}
}

// TooLargeMessage is the user-facing text for a size limit in bytes.
// Limits that are not whole MiB are reported in bytes.
func TooLargeMessage(limit int64) string {
	const mib = 1024 * 1024
	if limit > 0 && limit%mib == 0 {
		return fmt.Sprintf("File size must not exceed %dMB", limit/mib)
	}
	return fmt.Sprintf("File size must not exceed %d bytes", limit)
}
