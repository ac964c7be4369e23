package models

import "time"

// LegalDocument is the metadata of an uploaded document. The file itself
// lives in MinIO under ObjectKey.
type LegalDocument struct {
	ID           string    `json:"id"            bson:"_id"`
	FirmID       string    `json:"law_firm_id"   bson:"law_firm_id"`
	CaseID       string    `json:"case_id"       bson:"case_id"`
	DocumentName string    `json:"document_name" bson:"document_name"`
	DocumentType string    `json:"document_type" bson:"document_type"`
	ContentType  string    `json:"content_type"  bson:"content_type"`
	Size         int64     `json:"size"          bson:"size"`
	ObjectKey    string    `json:"-"             bson:"object_key"`
	AISummary    string    `json:"ai_summary"    bson:"ai_summary"`
	UploadedBy   string    `json:"uploaded_by"   bson:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"    bson:"created_at"`
}

// UploadResponse is returned by POST /api/documents/upload.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	AISummary  string `json:"ai_summary"`
	Message    string `json:"message"`
}
