package archive

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrUnauthenticated indicates no identity was presented. Always fatal
	// for the operation that raised it.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden indicates an identity was presented but lacks the
	// rights for the operation (single-object paths only; predicate-scoped
	// mutations silently affect zero rows instead).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates a request failed field validation.
	ErrValidation = errors.New("validation failed")

	// ErrDocumentNotFound indicates the referenced document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoFileAttached indicates a download was requested for a document
	// that has no uploaded blob.
	ErrNoFileAttached = errors.New("document has no file attached")
)

// DocumentError represents an error related to a document operation
type DocumentError struct {
	DocumentID uuid.UUID
	Op         string
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document operation %s failed for document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
