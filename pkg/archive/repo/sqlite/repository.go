// Package sqlite provides a single-file archive.Repository for local and
// development deployments, backed by modernc.org/sqlite (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/archivehub/archive-hub/pkg/archive"
)

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL,
	kind TEXT NOT NULL,
	author_id TEXT NOT NULL REFERENCES authors(id),
	category_id TEXT NOT NULL REFERENCES categories(id),
	content TEXT,
	blob_location TEXT,
	blob_key TEXT,
	size_bytes INTEGER,
	word_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
CREATE TABLE IF NOT EXISTS access_log (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// Repository implements archive.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// Open opens (and bootstraps) the database at path and returns a
// repository over it.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap sqlite schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// New wraps an existing database handle. The schema must already exist.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) EnsureAuthor(ctx context.Context, name string) (*archive.Author, error) {
	query := `
		INSERT INTO authors (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id, name, created_at`

	var author archive.Author
	var id string
	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), name, time.Now().UTC()).Scan(
		&id, &author.Name, &author.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure author: %w", err)
	}
	author.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse author id: %w", err)
	}
	return &author, nil
}

func (r *Repository) EnsureCategory(ctx context.Context, name string) (*archive.Category, error) {
	query := `
		INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id, name, created_at`

	var category archive.Category
	var id string
	err := r.db.QueryRowContext(ctx, query, uuid.New().String(), name, time.Now().UTC()).Scan(
		&id, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure category: %w", err)
	}
	category.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse category id: %w", err)
	}
	return &category, nil
}

func (r *Repository) CreateDocument(ctx context.Context, doc *archive.Document) error {
	query := `
		INSERT INTO documents (
			id, owner_id, title, description, language, kind,
			author_id, category_id, content, blob_location, blob_key,
			size_bytes, word_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID.String(), doc.OwnerID, doc.Title, doc.Description, doc.Language, string(doc.Kind),
		doc.AuthorID.String(), doc.CategoryID.String(), doc.Content, doc.BlobLocation, doc.BlobKey,
		doc.SizeBytes, doc.WordCount, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

const documentColumns = `
	d.id, d.owner_id, d.title, d.description, d.language, d.kind,
	d.author_id, d.category_id, d.content, d.blob_location, d.blob_key,
	d.size_bytes, d.word_count, d.created_at, d.updated_at,
	a.name, c.name`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*archive.Document, error) {
	var doc archive.Document
	var id, authorID, categoryID, kind string
	err := row.Scan(
		&id, &doc.OwnerID, &doc.Title, &doc.Description, &doc.Language, &kind,
		&authorID, &categoryID, &doc.Content, &doc.BlobLocation, &doc.BlobKey,
		&doc.SizeBytes, &doc.WordCount, &doc.CreatedAt, &doc.UpdatedAt,
		&doc.AuthorName, &doc.CategoryName)
	if err != nil {
		return nil, err
	}
	doc.Kind = archive.DocumentKind(kind)
	if doc.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse document id: %w", err)
	}
	if doc.AuthorID, err = uuid.Parse(authorID); err != nil {
		return nil, fmt.Errorf("parse author id: %w", err)
	}
	if doc.CategoryID, err = uuid.Parse(categoryID); err != nil {
		return nil, fmt.Errorf("parse category id: %w", err)
	}
	return &doc, nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*archive.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN authors a ON a.id = d.author_id
		JOIN categories c ON c.id = d.category_id
		WHERE d.id = ?`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, archive.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, params archive.UpdateDocumentParams) (int64, error) {
	sets := "title = ?, author_id = ?, category_id = ?, description = ?, language = ?, updated_at = ?"
	args := []interface{}{params.Title, params.AuthorID.String(), params.CategoryID.String(),
		params.Description, params.Language, time.Now().UTC()}

	if params.Content != nil {
		sets += ", content = ?, word_count = ?"
		args = append(args, *params.Content, *params.WordCount)
	}

	query := "UPDATE documents SET " + sets + " WHERE id = ?"
	args = append(args, params.ID.String())
	if params.OwnerID != nil {
		query += " AND owner_id = ?"
		args = append(args, *params.OwnerID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update document: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) SaveContent(ctx context.Context, params archive.SaveContentParams) (int64, error) {
	query := "UPDATE documents SET content = ?, word_count = ?, updated_at = ? WHERE id = ?"
	args := []interface{}{params.Content, params.WordCount, time.Now().UTC(), params.ID.String()}

	if params.OwnerID != nil {
		query += " AND owner_id = ?"
		args = append(args, *params.OwnerID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("save content: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID, ownerID *string) (*archive.Document, error) {
	// database/sql has no DELETE ... RETURNING portability guarantee, so
	// read then delete inside a transaction with the same predicate.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN authors a ON a.id = d.author_id
		JOIN categories c ON c.id = d.category_id
		WHERE d.id = ?`
	args := []interface{}{id.String()}
	if ownerID != nil {
		query += " AND d.owner_id = ?"
		args = append(args, *ownerID)
	}

	doc, err := scanDocument(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete document: %w", err)
	}

	del := "DELETE FROM documents WHERE id = ?"
	delArgs := []interface{}{id.String()}
	if ownerID != nil {
		del += " AND owner_id = ?"
		delArgs = append(delArgs, *ownerID)
	}
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}
	return doc, nil
}

func (r *Repository) ListDocuments(ctx context.Context, params archive.ListDocumentsParams) ([]*archive.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN authors a ON a.id = d.author_id
		JOIN categories c ON c.id = d.category_id`

	var conds []string
	var args []interface{}

	if params.OwnerID != nil {
		conds = append(conds, "d.owner_id = ?")
		args = append(args, *params.OwnerID)
	}
	if params.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(params.Query)) + "%"
		conds = append(conds, `(
			lower(d.title) LIKE ? ESCAPE '\' OR
			lower(d.description) LIKE ? ESCAPE '\' OR
			lower(a.name) LIKE ? ESCAPE '\' OR
			lower(c.name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderClause(params.Sort.Normalize())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*archive.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func orderClause(sort archive.SortKey) string {
	switch sort {
	case archive.SortOldest:
		return "d.created_at ASC"
	case archive.SortTitleAsc:
		return "lower(d.title) ASC"
	case archive.SortTitleDesc:
		return "lower(d.title) DESC"
	default:
		return "d.created_at DESC"
	}
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func (r *Repository) RecordAccess(ctx context.Context, entry *archive.AccessLogEntry) error {
	query := "INSERT INTO access_log (id, document_id, actor_id, created_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		entry.ID.String(), entry.DocumentID.String(), entry.ActorID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	return nil
}

func (r *Repository) ListAccessLog(ctx context.Context, limit int) ([]*archive.AccessRecord, error) {
	query := `
		SELECT al.id, al.document_id, al.actor_id, al.created_at,
			COALESCE(d.title, ?)
		FROM access_log al
		LEFT JOIN documents d ON d.id = al.document_id
		ORDER BY al.created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, archive.RemovedDocumentTitle, limit)
	if err != nil {
		return nil, fmt.Errorf("list access log: %w", err)
	}
	defer rows.Close()

	var records []*archive.AccessRecord
	for rows.Next() {
		var rec archive.AccessRecord
		var id, documentID string
		if err := rows.Scan(&id, &documentID, &rec.Entry.ActorID, &rec.Entry.CreatedAt, &rec.DocumentTitle); err != nil {
			return nil, err
		}
		if rec.Entry.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse access log id: %w", err)
		}
		if rec.Entry.DocumentID, err = uuid.Parse(documentID); err != nil {
			return nil, fmt.Errorf("parse access log document id: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
