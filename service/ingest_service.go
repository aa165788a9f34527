package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/insightdesk/insightdesk-be/database"
	"github.com/insightdesk/insightdesk-be/storage"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/pgvector/pgvector-go"
)

// ChunkInsertBatchSize bounds the payload of a single chunk insert.
const ChunkInsertBatchSize = 50

// BatchEmbedder is the slice of the embedding client the pipeline needs.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
}

// IngestService drives a document from accepted upload to ready (or error).
// Each upload runs one background task; steps are strictly sequential and
// any failure transitions the document straight to error.
type IngestService struct {
	docs      database.DocumentStore
	chunkRepo database.ChunkStore
	store     storage.ObjectStorage
	embedder  BatchEmbedder
	extractor *ExtractService
	chunker   *ChunkService
	batchSize int
}

func NewIngestService(
	docs database.DocumentStore,
	chunkRepo database.ChunkStore,
	store storage.ObjectStorage,
	embedder BatchEmbedder,
	extractor *ExtractService,
	chunker *ChunkService,
	embeddingBatchSize int,
) *IngestService {
	if embeddingBatchSize <= 0 {
		embeddingBatchSize = DefaultEmbeddingBatchSize
	}
	return &IngestService{
		docs:      docs,
		chunkRepo: chunkRepo,
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		chunker:   chunker,
		batchSize: embeddingBatchSize,
	}
}

var allowedMimeTypes = map[string]bool{
	types.MimeTypePDF:      true,
	types.MimeTypePlain:    true,
	types.MimeTypeMarkdown: true,
	types.MimeTypeCSV:      true,
}

// ValidateUpload rejects request-shape violations before any row or object
// is created.
func (s *IngestService) ValidateUpload(name, mimeType string, size int64) error {
	if name == "" {
		return fmt.Errorf("missing file name")
	}
	if !allowedMimeTypes[mimeType] {
		return fmt.Errorf("file type %s is not supported, upload PDF, TXT, MD, or CSV files", mimeType)
	}
	if size > types.MaxUploadSize {
		return fmt.Errorf("file size exceeds 10MB limit")
	}
	return nil
}

// AcceptUpload creates the document row, persists the raw bytes and spawns
// the rest of the pipeline as a background task. It returns once the
// document is in processing; the caller does not wait for ingestion.
func (s *IngestService) AcceptUpload(ctx context.Context, companyID, projectID, name, mimeType string, data []byte) (*types.Document, error) {
	doc, err := s.accept(ctx, companyID, projectID, name, mimeType, data)
	if err != nil {
		return nil, err
	}

	go s.processAsync(doc.ID, data, mimeType)

	return doc, nil
}

// IngestSync runs the full pipeline inline. Used by the CLI, where the
// caller wants the final status before exiting. Failures are recorded on the
// document record exactly like the background path.
func (s *IngestService) IngestSync(ctx context.Context, companyID, projectID, name, mimeType string, data []byte) (*types.Document, error) {
	doc, err := s.accept(ctx, companyID, projectID, name, mimeType, data)
	if err != nil {
		return nil, err
	}

	if err := s.Process(ctx, doc.ID, data, mimeType); err != nil {
		s.markError(ctx, doc.ID, err.Error())
		return doc, err
	}
	doc.Status = types.DocumentStatusReady
	return doc, nil
}

// accept covers the synchronous part of ingestion: document row in
// uploading, raw bytes stored, row advanced to processing. A storage failure
// rolls the row back so no orphaned metadata is left behind.
func (s *IngestService) accept(ctx context.Context, companyID, projectID, name, mimeType string, data []byte) (*types.Document, error) {
	doc := &types.Document{
		ProjectID: projectID,
		CompanyID: companyID,
		Name:      name,
		FileType:  mimeType,
		FileSize:  int64(len(data)),
		Status:    types.DocumentStatusUploading,
	}
	if err := s.docs.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	key := storage.ObjectKey(companyID, projectID, doc.ID, name)
	if err := s.store.Put(ctx, key, data); err != nil {
		if delErr := s.docs.DeleteDocument(ctx, doc.ID); delErr != nil {
			log.Printf("Failed to roll back document %s after storage error: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc.FilePath = key
	doc.Status = types.DocumentStatusProcessing
	if err := s.docs.UpdateDocumentStoragePath(ctx, doc.ID, key, types.DocumentStatusProcessing); err != nil {
		// Same rollback as a storage failure, otherwise the row would sit in
		// uploading forever with no task attached to it.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("Failed to remove stored bytes for document %s after record error: %v", doc.ID, delErr)
		}
		if delErr := s.docs.DeleteDocument(ctx, doc.ID); delErr != nil {
			log.Printf("Failed to roll back document %s after record error: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("failed to update document record: %w", err)
	}

	return doc, nil
}

// processAsync is the detached task behind AcceptUpload. Failures are
// written to the document record, never surfaced to the upload caller.
// Raw bytes already stored stay in place for inspection.
func (s *IngestService) processAsync(documentID string, data []byte, mimeType string) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic processing document %s: %v", documentID, r)
			s.markError(ctx, documentID, fmt.Sprintf("processing panic: %v", r))
		}
	}()

	if err := s.Process(ctx, documentID, data, mimeType); err != nil {
		log.Printf("Error processing document %s: %v", documentID, err)
		s.markError(ctx, documentID, err.Error())
	}
}

// Process runs extract -> chunk -> embed -> persist -> ready. Every step is
// a hard gate.
func (s *IngestService) Process(ctx context.Context, documentID string, data []byte, mimeType string) error {
	text, err := s.extractor.Extract(data, mimeType)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w extracted from document", types.ErrEmptyContent)
	}
	log.Printf("Extracted %d characters from document %s", len(text), documentID)

	// Persist the preview up front; it is useful for debugging even when a
	// later step fails.
	preview := text
	if len(preview) > types.PreviewMaxChars {
		// Back up to a rune boundary so the cut never splits a multi-byte
		// character; an invalid-UTF-8 preview would fail the TEXT insert.
		cut := types.PreviewMaxChars
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	if err := s.docs.UpdateDocumentPreview(ctx, documentID, preview); err != nil {
		return fmt.Errorf("failed to store text preview: %w", err)
	}

	textChunks := s.chunker.Chunk(text)
	if len(textChunks) == 0 {
		return fmt.Errorf("%w: no chunks created from document", types.ErrEmptyContent)
	}
	log.Printf("Generated %d chunks from document %s", len(textChunks), documentID)

	chunkTexts := make([]string, len(textChunks))
	for i, chunk := range textChunks {
		chunkTexts[i] = chunk.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, chunkTexts, s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(textChunks) {
		return fmt.Errorf("%w: %d chunks, %d embeddings", types.ErrConsistency, len(textChunks), len(embeddings))
	}

	chunks := make([]types.DocumentChunk, len(textChunks))
	for i, chunk := range textChunks {
		metadata := types.JSONMap{
			"start_index": chunk.StartIndex,
			"end_index":   chunk.EndIndex,
		}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}
		chunks[i] = types.DocumentChunk{
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    chunk.Content,
			Embedding:  pgvector.NewVector(embeddings[i]),
			Metadata:   metadata,
		}
	}

	// Sub-batched inserts bound single-request payload size. A failure midway
	// leaves earlier sub-batches persisted, which is acceptable: the document
	// is not ready yet and delete-and-reupload is the recovery path.
	for i := 0; i < len(chunks); i += ChunkInsertBatchSize {
		end := i + ChunkInsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.chunkRepo.InsertChunks(ctx, chunks[i:end]); err != nil {
			return fmt.Errorf("failed to store chunks %d-%d: %w", i, end, err)
		}
	}
	log.Printf("Saved %d chunks for document %s", len(chunks), documentID)

	if err := s.docs.UpdateDocumentStatus(ctx, documentID, types.DocumentStatusReady, ""); err != nil {
		return fmt.Errorf("failed to mark document ready: %w", err)
	}
	return nil
}

func (s *IngestService) markError(ctx context.Context, documentID, message string) {
	if err := s.docs.UpdateDocumentStatus(ctx, documentID, types.DocumentStatusError, message); err != nil {
		log.Printf("Failed to record error state for document %s: %v", documentID, err)
	}
}
