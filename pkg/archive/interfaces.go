package archive

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// GetDownloadURL returns a URL for downloading content
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error
}

// UpdateDocumentParams carries an owner-scoped metadata update. A nil
// OwnerID means unscoped (administrator); otherwise the update applies
// only where both id and owner match, in one statement. Content and
// WordCount are written together or not at all.
type UpdateDocumentParams struct {
	ID         uuid.UUID
	OwnerID    *string
	Title      string
	AuthorID   uuid.UUID
	CategoryID uuid.UUID
	Description string
	Language    string
	Content     *string
	WordCount   *int
}

// SaveContentParams carries an owner-scoped content save. Content and
// WordCount always travel together so a document is never left with a
// stale count.
type SaveContentParams struct {
	ID        uuid.UUID
	OwnerID   *string
	Content   string
	WordCount int
}

// ListDocumentsParams filters and orders a catalog listing. A nil OwnerID
// lists all documents (admin view). Query, when non-empty, is matched
// case-insensitively as a substring against title, description, author
// name and category name; a document matches when any field matches.
type ListDocumentsParams struct {
	OwnerID *string
	Query   string
	Sort    SortKey
}

// Repository defines the interface for document, label and access log
// persistence.
type Repository interface {
	// EnsureAuthor resolves a free-text author label to its shared entity,
	// creating it when absent.
	EnsureAuthor(ctx context.Context, name string) (*Author, error)

	// EnsureCategory resolves a free-text category label to its shared
	// entity, creating it when absent.
	EnsureCategory(ctx context.Context, name string) (*Category, error)

	CreateDocument(ctx context.Context, doc *Document) error

	// GetDocument returns the document with author and category names
	// joined, or ErrDocumentNotFound.
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)

	// UpdateDocument applies an owner-scoped update and reports the number
	// of rows affected. Zero rows is not an error.
	UpdateDocument(ctx context.Context, params UpdateDocumentParams) (int64, error)

	// SaveContent writes content and word count together, owner-scoped.
	SaveContent(ctx context.Context, params SaveContentParams) (int64, error)

	// DeleteDocument removes the document when the owner predicate
	// matches, returning the deleted row (for blob cleanup) or nil when
	// nothing matched.
	DeleteDocument(ctx context.Context, id uuid.UUID, ownerID *string) (*Document, error)

	ListDocuments(ctx context.Context, params ListDocumentsParams) ([]*Document, error)

	// RecordAccess appends one access fact.
	RecordAccess(ctx context.Context, entry *AccessLogEntry) error

	// ListAccessLog returns the most recent access facts with document
	// titles joined; deleted documents are reported as removed.
	ListAccessLog(ctx context.Context, limit int) ([]*AccessRecord, error)
}
