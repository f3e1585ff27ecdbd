package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivehub/archive-hub/pkg/archive"
	"github.com/archivehub/archive-hub/pkg/archive/repo/sqlite"
)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedDocument(t *testing.T, repo *sqlite.Repository, ownerID, title string) *archive.Document {
	t.Helper()
	ctx := context.Background()

	author, err := repo.EnsureAuthor(ctx, "Author")
	require.NoError(t, err)
	category, err := repo.EnsureCategory(ctx, "Category")
	require.NoError(t, err)

	doc := &archive.Document{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Title:      title,
		Language:   "eng",
		Kind:       archive.KindText,
		AuthorID:   author.ID,
		CategoryID: category.ID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.CreateDocument(ctx, doc))
	return doc
}

func TestEnsureAuthorUpsert(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.EnsureAuthor(ctx, "Shevchenko")
	require.NoError(t, err)
	second, err := repo.EnsureAuthor(ctx, "Shevchenko")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestDocumentRoundTrip(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	content := "inline body"
	size := int64(42)
	location := "https://files.example.com/a.txt"
	key := "blobs/a.txt"

	author, err := repo.EnsureAuthor(ctx, "Franko")
	require.NoError(t, err)
	category, err := repo.EnsureCategory(ctx, "Prose")
	require.NoError(t, err)

	doc := &archive.Document{
		ID:           uuid.New(),
		OwnerID:      "user-1",
		Title:        "Full record",
		Description:  "with every field set",
		Language:     "ukr",
		Kind:         archive.KindText,
		AuthorID:     author.ID,
		CategoryID:   category.ID,
		Content:      &content,
		BlobLocation: &location,
		BlobKey:      &key,
		SizeBytes:    &size,
		WordCount:    2,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.CreateDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, "Franko", got.AuthorName)
	assert.Equal(t, "Prose", got.CategoryName)
	require.NotNil(t, got.Content)
	assert.Equal(t, content, *got.Content)
	require.NotNil(t, got.SizeBytes)
	assert.Equal(t, size, *got.SizeBytes)
	assert.Equal(t, 2, got.WordCount)
}

func TestGetDocumentNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.GetDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, archive.ErrDocumentNotFound)
}

func TestUpdateDocumentScoped(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	doc := seedDocument(t, repo, "user-1", "Before")

	wrongOwner := "user-2"
	rows, err := repo.UpdateDocument(ctx, archive.UpdateDocumentParams{
		ID:         doc.ID,
		OwnerID:    &wrongOwner,
		Title:      "After",
		AuthorID:   doc.AuthorID,
		CategoryID: doc.CategoryID,
		Language:   "eng",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rightOwner := "user-1"
	content := "fresh body"
	wc := 2
	rows, err = repo.UpdateDocument(ctx, archive.UpdateDocumentParams{
		ID:         doc.ID,
		OwnerID:    &rightOwner,
		Title:      "After",
		AuthorID:   doc.AuthorID,
		CategoryID: doc.CategoryID,
		Language:   "eng",
		Content:    &content,
		WordCount:  &wc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := repo.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	require.NotNil(t, got.Content)
	assert.Equal(t, content, *got.Content)
	assert.Equal(t, 2, got.WordCount)
}

func TestSaveContentScoped(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	doc := seedDocument(t, repo, "user-1", "Saved")

	wrongOwner := "user-2"
	rows, err := repo.SaveContent(ctx, archive.SaveContentParams{
		ID: doc.ID, OwnerID: &wrongOwner, Content: "nope", WordCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = repo.SaveContent(ctx, archive.SaveContentParams{
		ID: doc.ID, Content: "one two three", WordCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestDeleteDocumentScoped(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	doc := seedDocument(t, repo, "user-1", "Doomed")

	wrongOwner := "user-2"
	deleted, err := repo.DeleteDocument(ctx, doc.ID, &wrongOwner)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	deleted, err = repo.DeleteDocument(ctx, doc.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "Doomed", deleted.Title)

	_, err = repo.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, archive.ErrDocumentNotFound)
}

func TestListDocumentsSearchAndSort(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	seedDocument(t, repo, "user-1", "Banana guide")
	seedDocument(t, repo, "user-1", "apple notes")
	seedDocument(t, repo, "user-2", "Cherry facts")

	ownerID := "user-1"
	docs, err := repo.ListDocuments(ctx, archive.ListDocumentsParams{
		OwnerID: &ownerID,
		Sort:    archive.SortTitleAsc,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "apple notes", docs[0].Title)
	assert.Equal(t, "Banana guide", docs[1].Title)

	docs, err = repo.ListDocuments(ctx, archive.ListDocumentsParams{
		OwnerID: &ownerID,
		Query:   "BANANA",
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Banana guide", docs[0].Title)

	// LIKE metacharacters in the query are literals.
	docs, err = repo.ListDocuments(ctx, archive.ListDocumentsParams{
		OwnerID: &ownerID,
		Query:   "100%",
	})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAccessLogJoin(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	kept := seedDocument(t, repo, "user-1", "Kept")
	doomed := seedDocument(t, repo, "user-1", "Doomed")

	base := time.Now().UTC()
	for i, doc := range []*archive.Document{kept, doomed} {
		require.NoError(t, repo.RecordAccess(ctx, &archive.AccessLogEntry{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			ActorID:    "guest",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	_, err := repo.DeleteDocument(ctx, doomed.ID, nil)
	require.NoError(t, err)

	records, err := repo.ListAccessLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, archive.RemovedDocumentTitle, records[0].DocumentTitle)
	assert.Equal(t, "Kept", records[1].DocumentTitle)

	records, err = repo.ListAccessLog(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
