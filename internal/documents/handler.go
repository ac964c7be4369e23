// Package documents stores uploaded legal documents and asks the LLM
// backend for a summary of each one.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
	"github.com/shalabh-srivastava/legalsuite/internal/llm"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

const (
	DefaultDocumentType = "general"
	DefaultMaxUpload    = 32 << 20

	uploadedMessage = "Document uploaded and analyzed successfully"
)

// MetadataStore persists document metadata.
type MetadataStore interface {
	InsertDocument(ctx context.Context, doc *models.LegalDocument) error
	ListDocumentsByFirm(ctx context.Context, firmID string) ([]models.LegalDocument, error)
	GetDocument(ctx context.Context, id string) (*models.LegalDocument, error)
}

// FileStore holds the document bytes.
type FileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds document HTTP handlers.
type Handler struct {
	meta      MetadataStore
	files     FileStore
	analyzer  llm.Analyzer
	maxUpload int64
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(meta MetadataStore, files FileStore, analyzer llm.Analyzer, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	return &Handler{
		meta:      meta,
		files:     files,
		analyzer:  analyzer,
		maxUpload: maxUpload,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// AnalysisPrompt is the question sent for a document. Only the name and type
// are described; file contents are not extracted.
func AnalysisPrompt(filename, docType string) string {
	return fmt.Sprintf("Document Analysis Request: %s - Type: %s. Please provide analysis based on typical documents of this type.", filename, docType)
}

// AnalysisContext lists what the summary should cover.
func AnalysisContext(docType string) string {
	return "Please analyze this legal document and provide: 1) A comprehensive summary, " +
		"2) Key legal points and issues, 3) Potential risks or concerns, 4) Recommended next steps. " +
		"Document type: " + docType
}

// Upload stores a multipart file, summarizes it and records its metadata.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	firmID := r.FormValue("law_firm_id")
	if firmID == "" {
		httpjson.Error(w, http.StatusBadRequest, "law_firm_id is required")
		return
	}
	docType := r.FormValue("document_type")
	if docType == "" {
		docType = DefaultDocumentType
	}
	uploadedBy := r.FormValue("uploaded_by")
	if uploadedBy == "" {
		uploadedBy, _ = auth.UserID(r.Context())
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := path.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	docID := h.newID()
	key := fmt.Sprintf("%s/%s/%s", firmID, docID, filename)
	log := h.logger.With(zap.String("firm_id", firmID), zap.String("document_id", docID))

	// The upload, the summary and the metadata write finish even if the client
	// disconnects, so no object is left without its record.
	ctx := context.WithoutCancel(r.Context())

	if err := h.files.Upload(ctx, key, file, header.Size, contentType); err != nil {
		log.Error("storing document", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Document upload failed: "+err.Error())
		return
	}

	correlationID := fmt.Sprintf("doc_analysis_%s_%s", firmID, uuid.NewString())
	summary := h.analyzer.GenerateLegalAnalysis(ctx, AnalysisPrompt(filename, docType), AnalysisContext(docType), correlationID)

	doc := &models.LegalDocument{
		ID:           docID,
		FirmID:       firmID,
		CaseID:       r.FormValue("case_id"),
		DocumentName: filename,
		DocumentType: docType,
		ContentType:  contentType,
		Size:         header.Size,
		ObjectKey:    key,
		AISummary:    summary,
		UploadedBy:   uploadedBy,
		CreatedAt:    h.now().UTC(),
	}
	if err := h.meta.InsertDocument(ctx, doc); err != nil {
		log.Error("saving document metadata", zap.Error(err))
		if rmErr := h.files.Remove(ctx, key); rmErr != nil {
			log.Warn("removing orphaned object", zap.String("key", key), zap.Error(rmErr))
		}
		httpjson.Error(w, http.StatusInternalServerError, "Document upload failed: "+err.Error())
		return
	}

	log.Info("document uploaded", zap.String("type", docType), zap.Int64("size", header.Size))
	httpjson.Write(w, http.StatusOK, models.UploadResponse{
		DocumentID: docID,
		Filename:   filename,
		AISummary:  summary,
		Message:    uploadedMessage,
	})
}

// List returns the firm's document metadata, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.meta.ListDocumentsByFirm(r.Context(), chi.URLParam(r, "firmID"))
	if err != nil {
		h.logger.Error("listing documents", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if docs == nil {
		docs = []models.LegalDocument{}
	}
	httpjson.Write(w, http.StatusOK, docs)
}

// Download streams the stored file.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	doc, err := h.meta.GetDocument(r.Context(), chi.URLParam(r, "docID"))
	if errors.Is(err, store.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		h.logger.Error("loading document", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	body, ct, err := h.files.Download(r.Context(), doc.ObjectKey)
	if errors.Is(err, store.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "file not available")
		return
	}
	if err != nil {
		h.logger.Error("downloading document", zap.String("key", doc.ObjectKey), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "download failed")
		return
	}
	defer body.Close()

	if ct == "" {
		ct = doc.ContentType
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.DocumentName))
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("streaming document", zap.Error(err))
	}
}
