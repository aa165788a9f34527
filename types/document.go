package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Document status lifecycle. Transitions only move forward:
// uploading -> processing -> ready | error.
const (
	DocumentStatusUploading  = "uploading"
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusError      = "error"
)

// Allowed upload MIME types.
const (
	MimeTypePDF      = "application/pdf"
	MimeTypePlain    = "text/plain"
	MimeTypeMarkdown = "text/markdown"
	MimeTypeCSV      = "text/csv"
)

// MaxUploadSize is the upload size limit in bytes (10 MiB).
const MaxUploadSize = 10 << 20

// PreviewMaxChars bounds the extracted-text preview stored on a document.
const PreviewMaxChars = 100000

// Document is an uploaded file tracked through the ingestion pipeline.
type Document struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"project_id"`
	CompanyID    string    `db:"company_id" json:"company_id"`
	Name         string    `db:"name" json:"name"`
	FilePath     string    `db:"file_path" json:"file_path"`
	FileType     string    `db:"file_type" json:"file_type"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	ContentText  string    `db:"content_text" json:"content_text,omitempty"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one embedded segment of a document's extracted text.
// Chunks are written in bulk after embedding succeeds and never mutated.
type DocumentChunk struct {
	ID         string          `db:"id" json:"id"`
	DocumentID string          `db:"document_id" json:"document_id"`
	ChunkIndex int             `db:"chunk_index" json:"chunk_index"`
	Content    string          `db:"content" json:"content"`
	Embedding  pgvector.Vector `db:"embedding" json:"-"`
	Metadata   JSONMap         `db:"metadata" json:"metadata"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Project groups documents under one company.
type Project struct {
	ID          string    `db:"id" json:"id"`
	CompanyID   string    `db:"company_id" json:"company_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RAGContext joins a matched chunk with its document and project names.
// Built fresh per search, never stored.
type RAGContext struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ProjectID    string  `json:"project_id"`
	ProjectName  string  `json:"project_name"`
	Content      string  `json:"content"`
	ChunkIndex   int     `json:"chunk_index"`
	Metadata     JSONMap `json:"metadata"`
	Similarity   float64 `json:"similarity"`
}

// JSONMap is a JSONB column holding a chunk's metadata bag.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}
}
