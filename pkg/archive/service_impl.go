package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Defaults applied when a submission leaves optional fields empty. Shipped
// values follow the original deployment; override per install.
type Defaults struct {
	Language       string
	Category       string
	AuthoredAuthor string // author label for inline text submissions
	UploadAuthor   string // author label for file submissions
}

// DefaultDefaults returns the stock labels.
func DefaultDefaults() Defaults {
	return Defaults{
		Language:       "ukr",
		Category:       "Unsorted",
		AuthoredAuthor: "Me",
		UploadAuthor:   "Unknown",
	}
}

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	fetcher    Fetcher
	defaults   Defaults
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend used for uploaded files.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithFetcher sets the remote text fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *service) {
		s.fetcher = f
	}
}

// WithDefaults overrides the default labels.
func WithDefaults(d Defaults) Option {
	return func(s *service) {
		s.defaults = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		defaults: DefaultDefaults(),
		logger:   slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(0)
	}

	return s, nil
}

func (s *service) CreateDocument(ctx context.Context, actor Identity, req CreateDocumentRequest) (*Document, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	kind := ClassifyKind(req.Mode, req.KindHint, req.FileName)

	var content *string
	wordCount := 0
	switch {
	case req.Mode == ModeText:
		body := req.Content
		content = &body
		wordCount = CountWords(body)
	case kind == KindText && req.BlobLocation != "":
		// A text-like upload: count its words once at creation. A failed
		// fetch degrades to a zero count, never to an error.
		text, err := s.fetcher.FetchText(ctx, req.BlobLocation)
		if err != nil {
			s.logger.Error("Failed to count words in uploaded file", "location", req.BlobLocation, "err", err)
		} else {
			wordCount = CountWords(text)
		}
	}

	authorName := req.AuthorName
	if authorName == "" {
		if req.Mode == ModeText {
			authorName = s.defaults.AuthoredAuthor
		} else {
			authorName = s.defaults.UploadAuthor
		}
	}
	categoryName := req.CategoryName
	if categoryName == "" {
		categoryName = s.defaults.Category
	}
	language := req.Language
	if language == "" {
		language = s.defaults.Language
	}

	author, err := s.repository.EnsureAuthor(ctx, authorName)
	if err != nil {
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	category, err := s.repository.EnsureCategory(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		ID:           uuid.New(),
		OwnerID:      actor.ID,
		Title:        req.Title,
		Description:  req.Description,
		Language:     language,
		Kind:         kind,
		AuthorID:     author.ID,
		CategoryID:   category.ID,
		AuthorName:   author.Name,
		CategoryName: category.Name,
		Content:      content,
		WordCount:    wordCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Mode == ModeFile {
		loc, key, size := req.BlobLocation, req.BlobKey, req.SizeBytes
		doc.BlobLocation = &loc
		if key != "" {
			doc.BlobKey = &key
		}
		doc.SizeBytes = &size
	}

	if err := s.repository.CreateDocument(ctx, doc); err != nil {
		return nil, &DocumentError{DocumentID: doc.ID, Op: "create", Err: err}
	}

	s.logger.Info("Document created", "document_id", doc.ID, "kind", doc.Kind, "word_count", doc.WordCount)
	return doc, nil
}

func (s *service) UpdateDocument(ctx context.Context, actor Identity, req UpdateDocumentRequest) error {
	if err := requireIdentity(actor); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	authorName := req.AuthorName
	if authorName == "" {
		authorName = s.defaults.UploadAuthor
	}
	categoryName := req.CategoryName
	if categoryName == "" {
		categoryName = s.defaults.Category
	}

	author, err := s.repository.EnsureAuthor(ctx, authorName)
	if err != nil {
		return fmt.Errorf("resolve author: %w", err)
	}
	category, err := s.repository.EnsureCategory(ctx, categoryName)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}

	params := UpdateDocumentParams{
		ID:          req.ID,
		OwnerID:     mutationScope(actor),
		Title:       req.Title,
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		Description: req.Description,
		Language:    req.Language,
	}
	// Content and word count travel together, or not at all.
	if req.Content != nil {
		wc := CountWords(*req.Content)
		params.Content = req.Content
		params.WordCount = &wc
	}

	rows, err := s.repository.UpdateDocument(ctx, params)
	if err != nil {
		return &DocumentError{DocumentID: req.ID, Op: "update", Err: err}
	}
	if rows == 0 {
		// Silent no-op: not-owned and nonexistent are indistinguishable.
		s.logger.Info("Update matched no rows", "document_id", req.ID, "actor", actor.ID)
	}
	return nil
}

func (s *service) SaveDocumentContent(ctx context.Context, actor Identity, id uuid.UUID, content string) error {
	if err := requireIdentity(actor); err != nil {
		return err
	}

	rows, err := s.repository.SaveContent(ctx, SaveContentParams{
		ID:        id,
		OwnerID:   mutationScope(actor),
		Content:   content,
		WordCount: CountWords(content),
	})
	if err != nil {
		return &DocumentError{DocumentID: id, Op: "save_content", Err: err}
	}
	if rows == 0 {
		s.logger.Info("Content save matched no rows", "document_id", id, "actor", actor.ID)
	}
	return nil
}

func (s *service) DeleteDocument(ctx context.Context, actor Identity, id uuid.UUID) error {
	if err := requireIdentity(actor); err != nil {
		return err
	}

	deleted, err := s.repository.DeleteDocument(ctx, id, mutationScope(actor))
	if err != nil {
		return &DocumentError{DocumentID: id, Op: "delete", Err: err}
	}
	if deleted == nil {
		// Nothing matched the owner predicate; silent no-op.
		return nil
	}

	if deleted.BlobKey != nil && s.blobStore != nil {
		if err := s.blobStore.Delete(ctx, *deleted.BlobKey); err != nil {
			// The record is already gone; an orphaned blob is logged, not
			// surfaced.
			s.logger.Error("Failed to delete blob for removed document", "document_id", id, "key", *deleted.BlobKey, "err", err)
		}
	}

	s.logger.Info("Document deleted", "document_id", id, "actor", actor.ID)
	return nil
}

func (s *service) ListDocuments(ctx context.Context, actor Identity, query string, sort SortKey) ([]*Document, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}

	owner := actor.ID
	docs, err := s.repository.ListDocuments(ctx, ListDocumentsParams{
		OwnerID: &owner,
		Query:   query,
		Sort:    sort.Normalize(),
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *service) ListAllDocuments(ctx context.Context, actor Identity) ([]*Document, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	docs, err := s.repository.ListDocuments(ctx, ListDocumentsParams{Sort: SortNewest})
	if err != nil {
		return nil, fmt.Errorf("list all documents: %w", err)
	}
	return docs, nil
}

func (s *service) GetDocumentForRead(ctx context.Context, actor Identity, id uuid.UUID) (*ReadView, error) {
	doc, err := s.repository.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, &DocumentError{DocumentID: id, Op: "read", Err: err}
	}

	view := &ReadView{
		Document: doc,
		IsPDF:    DisplaysAsPDF(doc),
		IsImage:  DisplaysAsImage(doc),
		CanEdit:  actor.CanMutate(doc),
	}

	if !view.IsPDF && !view.IsImage {
		view.Text = s.resolveText(ctx, doc)
	}

	s.recordAccess(ctx, doc.ID, actor)
	return view, nil
}

// resolveText returns the authoritative text body for a text-bearing
// document: inline content when stored, otherwise the fetched remote text.
// Fetched text is cached back onto TEXT documents so subsequent reads skip
// the fetch.
func (s *service) resolveText(ctx context.Context, doc *Document) string {
	if doc.Content != nil {
		return *doc.Content
	}
	if doc.BlobLocation == nil {
		return ""
	}

	text, err := s.fetchBlobText(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to load document text", "document_id", doc.ID, "err", err)
		return FetchFailedPlaceholder
	}

	if doc.Kind == KindText {
		// Best-effort cache-back, unscoped: this is a system write, not a
		// user mutation. Word count rides along to stay consistent.
		if _, err := s.repository.SaveContent(ctx, SaveContentParams{
			ID:        doc.ID,
			Content:   text,
			WordCount: CountWords(text),
		}); err != nil {
			s.logger.Error("Failed to cache fetched text", "document_id", doc.ID, "err", err)
		}
	}
	return text
}

// fetchBlobText prefers the public blob location; documents stored through
// the integrated backend with only a key fall back to a direct download.
func (s *service) fetchBlobText(ctx context.Context, doc *Document) (string, error) {
	if doc.BlobLocation != nil && *doc.BlobLocation != "" {
		return s.fetcher.FetchText(ctx, *doc.BlobLocation)
	}
	if doc.BlobKey != nil && s.blobStore != nil {
		rc, err := s.blobStore.Download(ctx, *doc.BlobKey)
		if err != nil {
			return "", err
		}
		defer rc.Close()
		data, err := readAllLimited(rc)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("document %s has no blob source", doc.ID)
}

func (s *service) ResolveDownload(ctx context.Context, actor Identity, id uuid.UUID) (string, error) {
	doc, err := s.repository.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", &DocumentError{DocumentID: id, Op: "download", Err: err}
	}

	var url string
	switch {
	case doc.BlobLocation != nil && *doc.BlobLocation != "":
		url = *doc.BlobLocation
	case doc.BlobKey != nil && s.blobStore != nil:
		url, err = s.blobStore.GetDownloadURL(ctx, *doc.BlobKey, doc.Title)
		if err != nil {
			return "", &StorageError{Key: *doc.BlobKey, Op: "download_url", Err: err}
		}
	default:
		return "", ErrNoFileAttached
	}

	s.recordAccess(ctx, doc.ID, actor)
	return url, nil
}

func (s *service) ListAccessLog(ctx context.Context, actor Identity, limit int) ([]*AccessRecord, error) {
	if err := requireIdentity(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 100
	}

	records, err := s.repository.ListAccessLog(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list access log: %w", err)
	}
	return records, nil
}

// recordAccess appends one ledger fact. Best effort: a failed write is
// logged, never surfaced.
func (s *service) recordAccess(ctx context.Context, documentID uuid.UUID, actor Identity) {
	entry := &AccessLogEntry{
		ID:         uuid.New(),
		DocumentID: documentID,
		ActorID:    actor.ActorID(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repository.RecordAccess(ctx, entry); err != nil {
		s.logger.Error("Failed to record access", "document_id", documentID, "err", err)
	}
}
