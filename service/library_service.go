package service

import (
	"context"
	"fmt"
	"log"

	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/storage"
	"github.com/insightdesk/insightdesk-be/types"
)

// LibraryService handles project and document management around the
// ingestion pipeline: listing, lookups and destructive deletes that also
// clean up stored bytes.
type LibraryService struct {
	projects database.ProjectStore
	docs     database.DocumentStore
	chunks   database.ChunkStore
	store    storage.ObjectStorage
}

func NewLibraryService(
	projects database.ProjectStore,
	docs database.DocumentStore,
	chunks database.ChunkStore,
	store storage.ObjectStorage,
) *LibraryService {
	return &LibraryService{
		projects: projects,
		docs:     docs,
		chunks:   chunks,
		store:    store,
	}
}

func (s *LibraryService) CreateProject(ctx context.Context, companyID, name, description string) (*types.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("missing project name")
	}
	project := &types.Project{
		CompanyID:   companyID,
		Name:        name,
		Description: description,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *LibraryService) ListProjects(ctx context.Context, companyID string) ([]types.Project, error) {
	return s.projects.ListProjects(ctx, companyID)
}

func (s *LibraryService) GetProject(ctx context.Context, id string) (*types.Project, error) {
	return s.projects.GetProject(ctx, id)
}

func (s *LibraryService) UpdateProject(ctx context.Context, id, name, description string) (*types.Project, error) {
	return s.projects.UpdateProject(ctx, id, name, description)
}

// DeleteProject is destructive and irreversible: the datastore cascades to
// documents and chunks, and stored bytes for the whole project are removed.
func (s *LibraryService) DeleteProject(ctx context.Context, id string) error {
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project not found")
	}

	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}

	prefix := fmt.Sprintf("%s/%s", project.CompanyID, project.ID)
	if err := s.store.DeletePrefix(ctx, prefix); err != nil {
		// Rows are already gone; orphaned bytes are logged, not fatal.
		log.Printf("Failed to delete stored files for project %s: %v", id, err)
	}
	return nil
}

func (s *LibraryService) ListDocuments(ctx context.Context, projectID string) ([]types.Document, error) {
	return s.docs.ListDocuments(ctx, projectID)
}

func (s *LibraryService) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	return s.docs.GetDocument(ctx, id)
}

// DeleteDocument removes the row (chunks cascade) and the stored bytes.
// Deletion is always allowed, including for documents stuck in error.
func (s *LibraryService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document not found")
	}

	if err := s.chunks.DeleteChunksByDocument(ctx, id); err != nil {
		return err
	}
	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return err
	}

	prefix := fmt.Sprintf("%s/%s/%s", doc.CompanyID, doc.ProjectID, doc.ID)
	if err := s.store.DeletePrefix(ctx, prefix); err != nil {
		log.Printf("Failed to delete stored file for document %s: %v", id, err)
	}
	return nil
}
