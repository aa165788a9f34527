package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/jmoiron/sqlx"
)

type documentRepo struct {
	db *sqlx.DB
}

func NewDocumentRepo(db *sqlx.DB) database.DocumentStore {
	return &documentRepo{db: db}
}

func (r *documentRepo) CreateDocument(ctx context.Context, doc *types.Document) error {
	doc.ID = uuid.New().String()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	query := `
		INSERT INTO documents (id, project_id, company_id, name, file_path, file_type, file_size, content_text, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.ProjectID,
		doc.CompanyID,
		doc.Name,
		doc.FilePath,
		doc.FileType,
		doc.FileSize,
		doc.ContentText,
		doc.Status,
		doc.ErrorMessage,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

func (r *documentRepo) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	var doc types.Document
	query := `SELECT * FROM documents WHERE id = $1`
	err := r.db.GetContext(ctx, &doc, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context, projectID string) ([]types.Document, error) {
	var docs []types.Document
	query := `SELECT * FROM documents WHERE project_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &docs, query, projectID)
	return docs, err
}

func (r *documentRepo) ListReadyDocumentIDs(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM documents WHERE project_id = $1 AND status = $2 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &ids, query, projectID, types.DocumentStatusReady)
	return ids, err
}

func (r *documentRepo) UpdateDocumentStatus(ctx context.Context, id, status, errorMessage string) error {
	query := `UPDATE documents SET status = $1, error_message = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	return err
}

func (r *documentRepo) UpdateDocumentStoragePath(ctx context.Context, id, filePath, status string) error {
	query := `UPDATE documents SET file_path = $1, status = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, filePath, status, id)
	return err
}

func (r *documentRepo) UpdateDocumentPreview(ctx context.Context, id, preview string) error {
	query := `UPDATE documents SET content_text = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, preview, id)
	return err
}

func (r *documentRepo) DeleteDocument(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
