package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/archivehub/archive-hub/pkg/archive"
)

// maxUploadBytes caps a single direct upload.
const maxUploadBytes = 256 << 20

// DocumentResponse is the response body for a document
type DocumentResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Language     string    `json:"language"`
	Kind         string    `json:"kind"`
	AuthorName   string    `json:"author_name"`
	CategoryName string    `json:"category_name"`
	BlobLocation string    `json:"blob_location,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	WordCount    int       `json:"word_count"`
	IsPDF        bool      `json:"is_pdf"`
	IsImage      bool      `json:"is_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReadViewResponse is the response body for a document read view
type ReadViewResponse struct {
	DocumentResponse
	Text    string `json:"text,omitempty"`
	CanEdit bool   `json:"can_edit"`
}

// AccessRecordResponse is one access ledger row for the admin view
type AccessRecordResponse struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// UploadResponse is the response body for a direct blob upload
type UploadResponse struct {
	Key       string `json:"key"`
	Location  string `json:"location,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	FileName  string `json:"file_name"`
}

// DocumentHandler handles HTTP requests for the archive
type DocumentHandler struct {
	service archive.Service
	blobs   archive.BlobStore
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service archive.Service, blobs archive.BlobStore) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		blobs:   blobs,
	}
}

// Routes returns the routes for documents
func (h *DocumentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/documents", h.CreateDocument)
	r.Get("/documents", h.ListDocuments)
	r.Get("/documents/{id}", h.GetDocument)
	r.Put("/documents/{id}", h.UpdateDocument)
	r.Put("/documents/{id}/content", h.SaveContent)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Get("/documents/{id}/download", h.DownloadDocument)

	r.Post("/uploads", h.UploadBlob)
	r.Get("/uploads/download/*", h.ServeBlob)

	r.Get("/admin/documents", h.ListAllDocuments)
	r.Get("/admin/access-log", h.ListAccessLog)

	return r
}

// CreateDocument creates a new document
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req archive.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actor := archive.IdentityFromContext(r.Context())
	doc, err := h.service.CreateDocument(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, "Failed to create document", err)
		return
	}

	slog.Info("Document created", "document_id", doc.ID.String(), "kind", doc.Kind)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toDocumentResponse(doc))
}

// ListDocuments lists the caller's documents, filtered and sorted
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	actor := archive.IdentityFromContext(r.Context())
	query := r.URL.Query().Get("q")
	sort := archive.SortKey(r.URL.Query().Get("sort")).Normalize()

	docs, err := h.service.ListDocuments(r.Context(), actor, query, sort)
	if err != nil {
		writeError(w, r, "Failed to list documents", err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}
	render.JSON(w, r, resp)
}

// GetDocument returns the read view for a document and records the access
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	actor := archive.IdentityFromContext(r.Context())
	view, err := h.service.GetDocumentForRead(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, "Failed to get document", err)
		return
	}

	resp := ReadViewResponse{
		DocumentResponse: toDocumentResponse(view.Document),
		Text:             view.Text,
		CanEdit:          view.CanEdit,
	}
	render.JSON(w, r, resp)
}

// UpdateDocument edits a document's metadata and optionally its content
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req archive.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.ID = id

	actor := archive.IdentityFromContext(r.Context())
	if err := h.service.UpdateDocument(r.Context(), actor, req); err != nil {
		writeError(w, r, "Failed to update document", err)
		return
	}

	slog.Info("Document updated", "document_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// SaveContentRequest is the request body for saving inline content
type SaveContentRequest struct {
	Content string `json:"content"`
}

// SaveContent replaces a document's inline content
func (h *DocumentHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actor := archive.IdentityFromContext(r.Context())
	if err := h.service.SaveDocumentContent(r.Context(), actor, id, req.Content); err != nil {
		writeError(w, r, "Failed to save document content", err)
		return
	}

	slog.Info("Document content saved", "document_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDocument deletes a document by ID
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	actor := archive.IdentityFromContext(r.Context())
	if err := h.service.DeleteDocument(r.Context(), actor, id); err != nil {
		writeError(w, r, "Failed to delete document", err)
		return
	}

	slog.Info("Document deleted", "document_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDocument redirects to the document's blob and records the access
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	actor := archive.IdentityFromContext(r.Context())
	url, err := h.service.ResolveDownload(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, "Failed to resolve download", err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// UploadBlob streams the request body into the configured blob store.
// The returned key and location feed a subsequent document create.
func (h *DocumentHandler) UploadBlob(w http.ResponseWriter, r *http.Request) {
	actor := archive.IdentityFromContext(r.Context())
	if actor.IsAnonymous() {
		writeError(w, r, "Upload requires authentication", archive.ErrUnauthenticated)
		return
	}
	if h.blobs == nil {
		http.Error(w, "No blob store configured", http.StatusNotImplemented)
		return
	}

	fileName := r.URL.Query().Get("filename")
	if fileName == "" {
		http.Error(w, "Missing required 'filename' parameter", http.StatusBadRequest)
		return
	}

	key := uuid.New().String() + "/" + fileName
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	counter := &countingReader{reader: body}

	if err := h.blobs.Upload(r.Context(), key, counter); err != nil {
		slog.Error("Failed to upload blob", "key", key, "error", err)
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	resp := UploadResponse{
		Key:       key,
		SizeBytes: counter.n,
		FileName:  fileName,
	}
	if location, err := h.blobs.GetDownloadURL(r.Context(), key, fileName); err == nil {
		resp.Location = location
	}

	slog.Info("Blob uploaded", "key", key, "size_bytes", counter.n)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// ServeBlob streams a stored blob back to the client. Backends without
// presigned URLs point their download URLs here. Keys contain a path
// separator, so the route is a wildcard rather than a single segment.
func (h *DocumentHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		http.Error(w, "No blob store configured", http.StatusNotImplemented)
		return
	}

	key := chi.URLParam(r, "*")
	if key == "" {
		http.Error(w, "Missing blob key", http.StatusBadRequest)
		return
	}
	rc, err := h.blobs.Download(r.Context(), key)
	if err != nil {
		slog.Warn("Failed to download blob", "key", key, "error", err)
		http.Error(w, "Blob not found", http.StatusNotFound)
		return
	}
	defer rc.Close()

	if filename := r.URL.Query().Get("filename"); filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream blob", "key", key, "error", err)
	}
}

// ListAllDocuments lists every document in the archive (admin only)
func (h *DocumentHandler) ListAllDocuments(w http.ResponseWriter, r *http.Request) {
	actor := archive.IdentityFromContext(r.Context())
	docs, err := h.service.ListAllDocuments(r.Context(), actor)
	if err != nil {
		writeError(w, r, "Failed to list all documents", err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}
	render.JSON(w, r, resp)
}

// ListAccessLog lists recent access ledger entries (admin only)
func (h *DocumentHandler) ListAccessLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	actor := archive.IdentityFromContext(r.Context())
	records, err := h.service.ListAccessLog(r.Context(), actor, limit)
	if err != nil {
		writeError(w, r, "Failed to list access log", err)
		return
	}

	resp := make([]AccessRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, AccessRecordResponse{
			ID:            rec.Entry.ID.String(),
			DocumentID:    rec.Entry.DocumentID.String(),
			DocumentTitle: rec.DocumentTitle,
			ActorID:       rec.Entry.ActorID,
			CreatedAt:     rec.Entry.CreatedAt,
		})
	}
	render.JSON(w, r, resp)
}

func toDocumentResponse(doc *archive.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:           doc.ID.String(),
		OwnerID:      doc.OwnerID,
		Title:        doc.Title,
		Description:  doc.Description,
		Language:     doc.Language,
		Kind:         string(doc.Kind),
		AuthorName:   doc.AuthorName,
		CategoryName: doc.CategoryName,
		WordCount:    doc.WordCount,
		IsPDF:        archive.DisplaysAsPDF(doc),
		IsImage:      archive.DisplaysAsImage(doc),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if doc.BlobLocation != nil {
		resp.BlobLocation = *doc.BlobLocation
	}
	if doc.SizeBytes != nil {
		resp.SizeBytes = *doc.SizeBytes
	}
	return resp
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		slog.Error("Invalid document ID", "document_id", idStr, "error", err)
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, archive.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, archive.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, archive.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, archive.ErrDocumentNotFound), errors.Is(err, archive.ErrNoFileAttached):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err)
	} else {
		slog.Warn(msg, "error", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

type countingReader struct {
	reader io.Reader
	n      int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	return n, err
}
