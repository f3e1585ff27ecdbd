package archive

import (
	"context"

	"github.com/google/uuid"
)

// Service is the ownership-scoped mutation and query surface that every
// entry point funnels through.
type Service interface {
	// CreateDocument classifies, counts and persists a new document for
	// the acting identity.
	CreateDocument(ctx context.Context, actor Identity, req CreateDocumentRequest) (*Document, error)

	// UpdateDocument edits metadata, and content when supplied. A
	// non-owner, non-admin edit silently affects zero rows.
	UpdateDocument(ctx context.Context, actor Identity, req UpdateDocumentRequest) error

	// SaveDocumentContent replaces the inline content and its word count
	// together.
	SaveDocumentContent(ctx context.Context, actor Identity, id uuid.UUID, content string) error

	// DeleteDocument removes a document and, when one was removed, its
	// uploaded blob.
	DeleteDocument(ctx context.Context, actor Identity, id uuid.UUID) error

	// ListDocuments returns the actor's documents filtered by query and
	// ordered by sort.
	ListDocuments(ctx context.Context, actor Identity, query string, sort SortKey) ([]*Document, error)

	// ListAllDocuments is the admin-wide unscoped listing.
	ListAllDocuments(ctx context.Context, actor Identity) ([]*Document, error)

	// GetDocumentForRead resolves a document's display text and records
	// the access. Anonymous readers are allowed.
	GetDocumentForRead(ctx context.Context, actor Identity, id uuid.UUID) (*ReadView, error)

	// ResolveDownload returns the redirect URL for a document's uploaded
	// file and records the access.
	ResolveDownload(ctx context.Context, actor Identity, id uuid.UUID) (string, error)

	// ListAccessLog is the admin view over the access ledger.
	ListAccessLog(ctx context.Context, actor Identity, limit int) ([]*AccessRecord, error)
}
