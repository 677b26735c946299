package custody

import (
	"errors"
	"fmt"
)

// Publication error kinds. Notary clients wrap these so callers can
// distinguish failure modes with errors.Is.
var (
	// ErrRequestFailed means the outbound notarization call returned a
	// non-2xx status or could not be completed.
	ErrRequestFailed = errors.New("notarization request failed")

	// ErrInvalidHash means the record hash is not a valid hex digest.
	ErrInvalidHash = errors.New("invalid hash")

	// ErrInvalidURL means a webhook URL could not be parsed.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnauthorized means credentials were missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnsupportedService means no client exists for the requested
	// notarization service.
	ErrUnsupportedService = errors.New("unsupported notarization service")

	// ErrRecordNotFound means no record exists with the given ID.
	ErrRecordNotFound = errors.New("record not found")
)

// IOError wraps a file read/write/creation failure.
type IOError struct {
	Op   string // operation being attempted, e.g. "save transcript"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// StorageError wraps a persistence-layer failure.
type StorageError struct {
	Op  string // operation being attempted, e.g. "append entry"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
