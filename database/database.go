package database

import (
	"context"

	"github.com/insightdesk/insightdesk-be/types"
	"github.com/pgvector/pgvector-go"
)

// ProjectStore defines project CRUD. Deleting a project cascades to its
// documents and chunks at the datastore level.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *types.Project) error
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, companyID string) ([]types.Project, error)
	UpdateProject(ctx context.Context, id string, name, description string) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// DocumentStore defines document metadata operations used by the ingestion
// pipeline and the CRUD handlers.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *types.Document) error
	GetDocument(ctx context.Context, id string) (*types.Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]types.Document, error)
	ListReadyDocumentIDs(ctx context.Context, projectID string) ([]string, error)
	UpdateDocumentStatus(ctx context.Context, id, status, errorMessage string) error
	UpdateDocumentStoragePath(ctx context.Context, id, filePath, status string) error
	UpdateDocumentPreview(ctx context.Context, id, preview string) error
	DeleteDocument(ctx context.Context, id string) error
}

// ChunkStore defines chunk persistence and both vector search paths:
// MatchChunks invokes the datastore-side match function, while
// ListChunksByDocumentIDs feeds the in-process fallback.
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []types.DocumentChunk) error
	ListChunksByDocumentIDs(ctx context.Context, documentIDs []string) ([]types.DocumentChunk, error)
	DeleteChunksByDocument(ctx context.Context, documentID string) error
	MatchChunks(ctx context.Context, embedding pgvector.Vector, projectID string, threshold float64, limit int) ([]types.MatchedChunk, error)
	HasMatchFunction(ctx context.Context) bool
}
