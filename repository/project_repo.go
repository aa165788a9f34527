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

type projectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) database.ProjectStore {
	return &projectRepo{db: db}
}

func (r *projectRepo) CreateProject(ctx context.Context, project *types.Project) error {
	project.ID = uuid.New().String()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt

	query := `
		INSERT INTO projects (id, company_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.CompanyID,
		project.Name,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

func (r *projectRepo) GetProject(ctx context.Context, id string) (*types.Project, error) {
	var project types.Project
	query := `SELECT * FROM projects WHERE id = $1`
	err := r.db.GetContext(ctx, &project, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) ListProjects(ctx context.Context, companyID string) ([]types.Project, error) {
	var projects []types.Project
	query := `SELECT * FROM projects WHERE company_id = $1 ORDER BY updated_at DESC`
	err := r.db.SelectContext(ctx, &projects, query, companyID)
	return projects, err
}

func (r *projectRepo) UpdateProject(ctx context.Context, id string, name, description string) (*types.Project, error) {
	query := `
		UPDATE projects
		SET name = COALESCE(NULLIF($1, ''), name),
		    description = COALESCE(NULLIF($2, ''), description),
		    updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, name, description, id)
	if err != nil {
		return nil, err
	}
	return r.GetProject(ctx, id)
}

// DeleteProject removes the project row; documents and chunks go with it
// through the cascade foreign keys.
func (r *projectRepo) DeleteProject(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
