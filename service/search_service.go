package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/pgvector/pgvector-go"
)

// DefaultSearchLimit is the result count when the caller does not specify one.
const DefaultSearchLimit = 5

// QueryEmbedder is the slice of the embedding client search needs. Query
// embedding failures surface directly to the caller, so no retry wrapper.
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// SearchStrategy is one way of answering a nearest-neighbor query. Two
// implementations exist: the datastore-side match function and the
// in-process fallback.
type SearchStrategy interface {
	Match(ctx context.Context, embedding []float32, projectID string, limit int) ([]types.MatchedChunk, error)
}

// SearchService embeds a query, runs a search strategy and assembles
// RAGContext results with document and project provenance.
type SearchService struct {
	embedder  QueryEmbedder
	docs      database.DocumentStore
	projects  database.ProjectStore
	strategy  SearchStrategy
	threshold float64
	limit     int
}

// NewSearchService probes the datastore once for the match function and
// fixes the strategy accordingly. The fallback is a deliberate
// degrade-gracefully path, not an error.
func NewSearchService(
	embedder QueryEmbedder,
	docs database.DocumentStore,
	projects database.ProjectStore,
	chunks database.ChunkStore,
	threshold float64,
	defaultLimit int,
) *SearchService {
	if threshold <= 0 {
		threshold = 0.7
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultSearchLimit
	}

	var strategy SearchStrategy
	if chunks.HasMatchFunction(context.Background()) {
		strategy = &MatchFunctionStrategy{chunks: chunks, threshold: threshold}
	} else {
		log.Println("match_document_chunks function not found, using in-process vector search")
		strategy = &InProcessStrategy{docs: docs, chunks: chunks, threshold: threshold}
	}

	return &SearchService{
		embedder:  embedder,
		docs:      docs,
		projects:  projects,
		strategy:  strategy,
		threshold: threshold,
		limit:     defaultLimit,
	}
}

// Search returns ready-document chunks of the project ranked by similarity
// descending. An empty result set is success.
func (s *SearchService) Search(ctx context.Context, query, projectID string, limit int) ([]types.RAGContext, error) {
	if query == "" || projectID == "" {
		return nil, fmt.Errorf("missing required fields: query, projectId")
	}
	if limit <= 0 {
		limit = s.limit
	}

	queryEmbedding, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.strategy.Match(ctx, queryEmbedding, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return s.assembleContexts(ctx, matches), nil
}

// assembleContexts resolves provenance for each match. A failed lookup
// degrades that entry's name fields to "Unknown" instead of aborting the
// whole search.
func (s *SearchService) assembleContexts(ctx context.Context, matches []types.MatchedChunk) []types.RAGContext {
	results := make([]types.RAGContext, 0, len(matches))

	docCache := make(map[string]*types.Document)
	projectCache := make(map[string]*types.Project)

	for _, match := range matches {
		rc := types.RAGContext{
			ChunkID:      match.ID,
			DocumentID:   match.DocumentID,
			DocumentName: "Unknown",
			ProjectName:  "Unknown",
			Content:      match.Content,
			ChunkIndex:   match.ChunkIndex,
			Metadata:     match.Metadata,
			Similarity:   match.Similarity,
		}

		doc, ok := docCache[match.DocumentID]
		if !ok {
			var err error
			doc, err = s.docs.GetDocument(ctx, match.DocumentID)
			if err != nil {
				log.Printf("Failed to resolve document %s: %v", match.DocumentID, err)
				doc = nil
			}
			docCache[match.DocumentID] = doc
		}
		if doc != nil {
			rc.DocumentName = doc.Name
			rc.ProjectID = doc.ProjectID

			project, ok := projectCache[doc.ProjectID]
			if !ok {
				var err error
				project, err = s.projects.GetProject(ctx, doc.ProjectID)
				if err != nil {
					log.Printf("Failed to resolve project %s: %v", doc.ProjectID, err)
					project = nil
				}
				projectCache[doc.ProjectID] = project
			}
			if project != nil {
				rc.ProjectName = project.Name
			}
		}

		results = append(results, rc)
	}

	return results
}

// MatchFunctionStrategy delegates to the datastore-side nearest-neighbor
// function, which pre-filters to ready documents and pre-sorts by similarity.
type MatchFunctionStrategy struct {
	chunks    database.ChunkStore
	threshold float64
}

func (s *MatchFunctionStrategy) Match(ctx context.Context, embedding []float32, projectID string, limit int) ([]types.MatchedChunk, error) {
	return s.chunks.MatchChunks(ctx, pgvector.NewVector(embedding), projectID, s.threshold, limit)
}

// InProcessStrategy loads every chunk of the project's ready documents and
// ranks them by cosine similarity in-process.
type InProcessStrategy struct {
	docs      database.DocumentStore
	chunks    database.ChunkStore
	threshold float64
}

func (s *InProcessStrategy) Match(ctx context.Context, embedding []float32, projectID string, limit int) ([]types.MatchedChunk, error) {
	documentIDs, err := s.docs.ListReadyDocumentIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(documentIDs) == 0 {
		return nil, nil
	}

	chunks, err := s.chunks.ListChunksByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	var matches []types.MatchedChunk
	for _, chunk := range chunks {
		similarity, err := CosineSimilarity(embedding, chunk.Embedding.Slice())
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		if similarity >= s.threshold {
			matches = append(matches, types.MatchedChunk{DocumentChunk: chunk, Similarity: similarity})
		}
	}

	// Stable sort preserves encountered order on exactly equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// CosineSimilarity returns dot(a,b) / (||a|| * ||b||), or 0 when either norm
// is zero. Mismatched lengths fail fast rather than truncate.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", types.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0, nil
	}
	return dot / denominator, nil
}
