package archive

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind is the content category of a document, decided once at
// creation and never changed by edits.
type DocumentKind string

// Document kind constants (typed).
const (
	KindText  DocumentKind = "TEXT"
	KindPDF   DocumentKind = "PDF"
	KindEPUB  DocumentKind = "EPUB"
	KindImage DocumentKind = "IMAGE"
)

// SubmissionMode says how a document entered the system: authored inline
// in the editor, or attached as an uploaded file.
type SubmissionMode string

const (
	ModeText SubmissionMode = "text"
	ModeFile SubmissionMode = "file"
)

// SortKey selects the catalog ordering.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortTitleAsc  SortKey = "title_asc"
	SortTitleDesc SortKey = "title_desc"
)

// Normalize maps unknown sort values to the default ordering.
func (s SortKey) Normalize() SortKey {
	switch s {
	case SortNewest, SortOldest, SortTitleAsc, SortTitleDesc:
		return s
	default:
		return SortNewest
	}
}

// AnonymousActor is recorded in the access log when no identity is present.
const AnonymousActor = "guest"

// Document is a single archived item: inline text, or an uploaded
// PDF/EPUB/image/text file.
type Document struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language"`
	Kind        DocumentKind `json:"kind"`

	AuthorID   uuid.UUID `json:"author_id"`
	CategoryID uuid.UUID `json:"category_id"`

	// Joined labels, populated on reads.
	AuthorName   string `json:"author_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`

	// Content is the inline text body. Present only for TEXT documents
	// that were authored inline or whose remote text has been cached back.
	Content *string `json:"content,omitempty"`

	// Blob pointers are set only for documents that originated from a
	// file upload.
	BlobLocation *string `json:"blob_location,omitempty"`
	BlobKey      *string `json:"blob_key,omitempty"`
	SizeBytes    *int64  `json:"size_bytes,omitempty"`

	// WordCount is derived from the current resolved text content; 0 for
	// non-text kinds and empty content.
	WordCount int `json:"word_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is a shared free-text author label. Many documents reference one
// author by name.
type Author struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Category is a shared free-text category label.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessLogEntry is one append-only read or download fact. The document
// reference is weak: entries survive document deletion.
type AccessLogEntry struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// RemovedDocumentTitle is reported for access log entries whose document
// has since been deleted.
const RemovedDocumentTitle = "document removed"

// AccessRecord is an access log entry joined with its document title for
// the admin ledger view.
type AccessRecord struct {
	Entry         AccessLogEntry `json:"entry"`
	DocumentTitle string         `json:"document_title"`
}

// ReadView is everything the read page needs for one document: the entity,
// its resolved display text, and the presentation-time kind flags.
type ReadView struct {
	Document *Document `json:"document"`

	// Text is the resolved body for text-bearing documents: inline
	// content, fetched remote text, or the fetch-failure placeholder.
	Text string `json:"text,omitempty"`

	// Display-time flags, intentionally looser than the stored kind (see
	// DisplaysAsPDF / DisplaysAsImage).
	IsPDF   bool `json:"is_pdf"`
	IsImage bool `json:"is_image"`

	CanEdit bool `json:"can_edit"`
}
