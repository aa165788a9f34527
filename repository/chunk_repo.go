package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

type chunkRepo struct {
	db *sqlx.DB
}

func NewChunkRepo(db *sqlx.DB) database.ChunkStore {
	return &chunkRepo{db: db}
}

func (r *chunkRepo) InsertChunks(ctx context.Context, chunks []types.DocumentChunk) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range chunks {
		chunks[i].ID = uuid.New().String()
		chunks[i].CreatedAt = time.Now()

		_, err := tx.ExecContext(ctx, query,
			chunks[i].ID,
			chunks[i].DocumentID,
			chunks[i].ChunkIndex,
			chunks[i].Content,
			chunks[i].Embedding,
			chunks[i].Metadata,
			chunks[i].CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *chunkRepo) ListChunksByDocumentIDs(ctx context.Context, documentIDs []string) ([]types.DocumentChunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT * FROM document_chunks WHERE document_id IN (?) ORDER BY document_id, chunk_index`,
		documentIDs,
	)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var chunks []types.DocumentChunk
	err = r.db.SelectContext(ctx, &chunks, query, args...)
	return chunks, err
}

func (r *chunkRepo) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	query := `DELETE FROM document_chunks WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, query, documentID)
	return err
}

// MatchChunks invokes the datastore-side match_document_chunks function,
// which returns rows pre-filtered by threshold and pre-sorted by similarity.
func (r *chunkRepo) MatchChunks(ctx context.Context, embedding pgvector.Vector, projectID string, threshold float64, limit int) ([]types.MatchedChunk, error) {
	query := `
		SELECT id, document_id, content, chunk_index, metadata, similarity
		FROM match_document_chunks($1, $2, $3, $4)
	`
	rows, err := r.db.QueryContext(ctx, query, embedding, projectID, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []types.MatchedChunk
	for rows.Next() {
		var m types.MatchedChunk
		err := rows.Scan(
			&m.ID,
			&m.DocumentID,
			&m.Content,
			&m.ChunkIndex,
			&m.Metadata,
			&m.Similarity,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// HasMatchFunction probes the catalog for match_document_chunks so the
// search service can pick its strategy up front instead of treating a
// missing-function error as control flow.
func (r *chunkRepo) HasMatchFunction(ctx context.Context) bool {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM pg_proc WHERE proname = 'match_document_chunks')`
	if err := r.db.GetContext(ctx, &exists, query); err != nil {
		return false
	}
	return exists
}
