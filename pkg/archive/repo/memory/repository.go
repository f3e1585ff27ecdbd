package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/archivehub/archive-hub/pkg/archive"
)

// Repository implements archive.Repository using in-memory storage
type Repository struct {
	mu         sync.RWMutex
	documents  map[uuid.UUID]*archive.Document
	authors    map[string]*archive.Author   // keyed by name
	categories map[string]*archive.Category // keyed by name
	accessLog  []*archive.AccessLogEntry
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		documents:  make(map[uuid.UUID]*archive.Document),
		authors:    make(map[string]*archive.Author),
		categories: make(map[string]*archive.Category),
	}
}

func (r *Repository) EnsureAuthor(ctx context.Context, name string) (*archive.Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if author, exists := r.authors[name]; exists {
		authorCopy := *author
		return &authorCopy, nil
	}
	author := &archive.Author{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.authors[name] = author
	authorCopy := *author
	return &authorCopy, nil
}

func (r *Repository) EnsureCategory(ctx context.Context, name string) (*archive.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category, exists := r.categories[name]; exists {
		categoryCopy := *category
		return &categoryCopy, nil
	}
	category := &archive.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.categories[name] = category
	categoryCopy := *category
	return &categoryCopy, nil
}

func (r *Repository) CreateDocument(ctx context.Context, doc *archive.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	docCopy := *doc
	r.documents[doc.ID] = &docCopy
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*archive.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.documents[id]
	if !exists {
		return nil, archive.ErrDocumentNotFound
	}
	docCopy := *doc
	r.joinLabels(&docCopy)
	return &docCopy, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, params archive.UpdateDocumentParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.documents[params.ID]
	if !exists {
		return 0, nil
	}
	if params.OwnerID != nil && doc.OwnerID != *params.OwnerID {
		return 0, nil
	}

	doc.Title = params.Title
	doc.AuthorID = params.AuthorID
	doc.CategoryID = params.CategoryID
	doc.Description = params.Description
	doc.Language = params.Language
	if params.Content != nil {
		content := *params.Content
		doc.Content = &content
		doc.WordCount = *params.WordCount
	}
	doc.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (r *Repository) SaveContent(ctx context.Context, params archive.SaveContentParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.documents[params.ID]
	if !exists {
		return 0, nil
	}
	if params.OwnerID != nil && doc.OwnerID != *params.OwnerID {
		return 0, nil
	}

	content := params.Content
	doc.Content = &content
	doc.WordCount = params.WordCount
	doc.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID, ownerID *string) (*archive.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.documents[id]
	if !exists {
		return nil, nil
	}
	if ownerID != nil && doc.OwnerID != *ownerID {
		return nil, nil
	}

	delete(r.documents, id)
	docCopy := *doc
	return &docCopy, nil
}

func (r *Repository) ListDocuments(ctx context.Context, params archive.ListDocumentsParams) ([]*archive.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(params.Query)

	var docs []*archive.Document
	for _, doc := range r.documents {
		if params.OwnerID != nil && doc.OwnerID != *params.OwnerID {
			continue
		}
		docCopy := *doc
		r.joinLabels(&docCopy)
		if query != "" && !matchesQuery(&docCopy, query) {
			continue
		}
		docs = append(docs, &docCopy)
	}

	sortDocuments(docs, params.Sort.Normalize())
	return docs, nil
}

// matchesQuery is the OR-match over title, description, author and
// category names.
func matchesQuery(doc *archive.Document, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(doc.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(doc.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(doc.AuthorName), lowerQuery) ||
		strings.Contains(strings.ToLower(doc.CategoryName), lowerQuery)
}

func sortDocuments(docs []*archive.Document, key archive.SortKey) {
	sort.SliceStable(docs, func(i, j int) bool {
		switch key {
		case archive.SortOldest:
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		case archive.SortTitleAsc:
			return strings.ToLower(docs[i].Title) < strings.ToLower(docs[j].Title)
		case archive.SortTitleDesc:
			return strings.ToLower(docs[i].Title) > strings.ToLower(docs[j].Title)
		default:
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
	})
}

func (r *Repository) RecordAccess(ctx context.Context, entry *archive.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entryCopy := *entry
	r.accessLog = append(r.accessLog, &entryCopy)
	return nil
}

func (r *Repository) ListAccessLog(ctx context.Context, limit int) ([]*archive.AccessRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*archive.AccessRecord
	for i := len(r.accessLog) - 1; i >= 0 && len(records) < limit; i-- {
		entry := *r.accessLog[i]
		title := archive.RemovedDocumentTitle
		if doc, exists := r.documents[entry.DocumentID]; exists {
			title = doc.Title
		}
		records = append(records, &archive.AccessRecord{Entry: entry, DocumentTitle: title})
	}
	return records, nil
}

// joinLabels fills the denormalized author and category names the way the
// SQL repositories do with joins.
func (r *Repository) joinLabels(doc *archive.Document) {
	for _, author := range r.authors {
		if author.ID == doc.AuthorID {
			doc.AuthorName = author.Name
			break
		}
	}
	for _, category := range r.categories {
		if category.ID == doc.CategoryID {
			doc.CategoryName = category.Name
			break
		}
	}
}
