package archive

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// CreateDocumentRequest contains parameters for creating a document.
// Blob fields come from the upload provider and are ignored in authored
// text mode.
type CreateDocumentRequest struct {
	Mode         SubmissionMode `json:"mode"`
	Title        string         `json:"title"`
	AuthorName   string         `json:"author_name"`
	CategoryName string         `json:"category_name"`
	Description  string         `json:"description"`
	Language     string         `json:"language"`
	Content      string         `json:"content"`

	// KindHint is an upstream pre-classification; trusted when it names a
	// binary kind.
	KindHint DocumentKind `json:"kind_hint"`

	FileName     string `json:"file_name"`
	BlobLocation string `json:"blob_location"`
	BlobKey      string `json:"blob_key"`
	SizeBytes    int64  `json:"size_bytes"`
}

// Validate checks required fields. Title is always required; a file
// submission must carry the upload's blob location.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Mode, validation.Required, validation.In(ModeText, ModeFile)),
		validation.Field(&r.BlobLocation, validation.Required.When(r.Mode == ModeFile)),
	)
}

// UpdateDocumentRequest contains parameters for editing a document's
// metadata. Content is optional: when nil, the stored content and word
// count are untouched.
type UpdateDocumentRequest struct {
	// ID is taken from the request path, never the body.
	ID           uuid.UUID `json:"-"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"author_name"`
	CategoryName string    `json:"category_name"`
	Description  string    `json:"description"`
	Language     string    `json:"language"`
	Content      *string   `json:"content"`
}

// Validate checks required fields.
func (r UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}
