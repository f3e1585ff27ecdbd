package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/archivehub/archive-hub/pkg/archive"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements archive.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) archive.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) archive.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) EnsureAuthor(ctx context.Context, name string) (*archive.Author, error) {
	// The do-update form keeps RETURNING populated on the reuse path.
	query := `
		INSERT INTO authors (id, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	var author archive.Author
	err := r.db.QueryRow(ctx, query, uuid.New(), name).Scan(
		&author.ID, &author.Name, &author.CreatedAt)
	if err != nil {
		return nil, r.handlePostgresError("ensure author", err)
	}
	return &author, nil
}

func (r *Repository) EnsureCategory(ctx context.Context, name string) (*archive.Category, error) {
	query := `
		INSERT INTO categories (id, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	var category archive.Category
	err := r.db.QueryRow(ctx, query, uuid.New(), name).Scan(
		&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, r.handlePostgresError("ensure category", err)
	}
	return &category, nil
}

func (r *Repository) CreateDocument(ctx context.Context, doc *archive.Document) error {
	query := `
		INSERT INTO documents (
			id, owner_id, title, description, language, kind,
			author_id, category_id, content, blob_location, blob_key,
			size_bytes, word_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.OwnerID, doc.Title, doc.Description, doc.Language, doc.Kind,
		doc.AuthorID, doc.CategoryID, doc.Content, doc.BlobLocation, doc.BlobKey,
		doc.SizeBytes, doc.WordCount, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create document", err)
	}
	return nil
}

const documentColumns = `
	d.id, d.owner_id, d.title, d.description, d.language, d.kind,
	d.author_id, d.category_id, d.content, d.blob_location, d.blob_key,
	d.size_bytes, d.word_count, d.created_at, d.updated_at,
	a.name, c.name`

func scanDocument(row pgx.Row) (*archive.Document, error) {
	var doc archive.Document
	err := row.Scan(
		&doc.ID, &doc.OwnerID, &doc.Title, &doc.Description, &doc.Language, &doc.Kind,
		&doc.AuthorID, &doc.CategoryID, &doc.Content, &doc.BlobLocation, &doc.BlobKey,
		&doc.SizeBytes, &doc.WordCount, &doc.CreatedAt, &doc.UpdatedAt,
		&doc.AuthorName, &doc.CategoryName)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *Repository) GetDocument(ctx context.Context, id uuid.UUID) (*archive.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents d
		JOIN authors a ON a.id = d.author_id
		JOIN categories c ON c.id = d.category_id
		WHERE d.id = $1`

	doc, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, archive.ErrDocumentNotFound
		}
		return nil, r.handlePostgresError("get document", err)
	}
	return doc, nil
}

func (r *Repository) UpdateDocument(ctx context.Context, params archive.UpdateDocumentParams) (int64, error) {
	sets := []string{
		"title = $2", "author_id = $3", "category_id = $4",
		"description = $5", "language = $6", "updated_at = NOW()",
	}
	args := []interface{}{params.ID, params.Title, params.AuthorID, params.CategoryID,
		params.Description, params.Language}

	if params.Content != nil {
		args = append(args, params.Content, params.WordCount)
		sets = append(sets,
			fmt.Sprintf("content = $%d", len(args)-1),
			fmt.Sprintf("word_count = $%d", len(args)))
	}

	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = $1", strings.Join(sets, ", "))
	if params.OwnerID != nil {
		args = append(args, *params.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.handlePostgresError("update document", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) SaveContent(ctx context.Context, params archive.SaveContentParams) (int64, error) {
	query := `
		UPDATE documents
		SET content = $2, word_count = $3, updated_at = NOW()
		WHERE id = $1`
	args := []interface{}{params.ID, params.Content, params.WordCount}

	if params.OwnerID != nil {
		args = append(args, *params.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.handlePostgresError("save content", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteDocument(ctx context.Context, id uuid.UUID, ownerID *string) (*archive.Document, error) {
	query := `
		DELETE FROM documents
		WHERE id = $1`
	args := []interface{}{id}

	if ownerID != nil {
		args = append(args, *ownerID)
		query += " AND owner_id = $2"
	}
	query += `
		RETURNING id, owner_id, title, description, language, kind,
			author_id, category_id, content, blob_location, blob_key,
			size_bytes, word_count, created_at, updated_at`

	var doc archive.Document
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&doc.ID, &doc.OwnerID, &doc.Title, &doc.Description, &doc.Language, &doc.Kind,
		&doc.AuthorID, &doc.CategoryID, &doc.Content, &doc.BlobLocation, &doc.BlobKey,
		&doc.SizeBytes, &doc.WordCount, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Nothing matched the predicate; a silent no-op, not an error.
			return nil, nil
		}
		return nil, r.handlePostgresError("delete document", err)
	}
	return &doc, nil
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
		args = append(args, *params.OwnerID)
		conds = append(conds, fmt.Sprintf("d.owner_id = $%d", len(args)))
	}
	if params.Query != "" {
		args = append(args, "%"+escapeLike(params.Query)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(d.title ILIKE $%d ESCAPE '\' OR d.description ILIKE $%d ESCAPE '\' OR a.name ILIKE $%d ESCAPE '\' OR c.name ILIKE $%d ESCAPE '\')`,
			n, n, n, n))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderClause(params.Sort.Normalize())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list documents", err)
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
	query := `
		INSERT INTO access_log (id, document_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, entry.ID, entry.DocumentID, entry.ActorID, entry.CreatedAt)
	if err != nil {
		return r.handlePostgresError("record access", err)
	}
	return nil
}

func (r *Repository) ListAccessLog(ctx context.Context, limit int) ([]*archive.AccessRecord, error) {
	// Weak reference: the left join keeps entries whose document is gone.
	query := `
		SELECT al.id, al.document_id, al.actor_id, al.created_at,
			COALESCE(d.title, $2)
		FROM access_log al
		LEFT JOIN documents d ON d.id = al.document_id
		ORDER BY al.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit, archive.RemovedDocumentTitle)
	if err != nil {
		return nil, r.handlePostgresError("list access log", err)
	}
	defer rows.Close()

	var records []*archive.AccessRecord
	for rows.Next() {
		var rec archive.AccessRecord
		if err := rows.Scan(
			&rec.Entry.ID, &rec.Entry.DocumentID, &rec.Entry.ActorID, &rec.Entry.CreatedAt,
			&rec.DocumentTitle); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
