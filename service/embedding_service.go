package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/insightdesk/insightdesk-be/config"
	"github.com/insightdesk/insightdesk-be/types"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingBatchSize is the number of texts sent per API request.
	DefaultEmbeddingBatchSize = 100

	interBatchDelay = 100 * time.Millisecond
	retryAttempts   = 3
	retryBaseDelay  = time.Second
)

// EmbeddingService calls the external embedding API. Batch requests run
// sequentially to respect upstream rate limits.
type EmbeddingService struct {
	client    *openai.Client
	model     string
	batchSize int

	// Overridable for tests.
	batchDelay time.Duration
	retryDelay time.Duration
}

// NewEmbeddingService checks the credential eagerly: a missing API key fails
// at construction, not at request time.
func NewEmbeddingService(cfg config.EmbeddingConfig) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key: %w", types.ErrNotConfigured)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}

	return &EmbeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		batchSize:  batchSize,
		batchDelay: interBatchDelay,
		retryDelay: retryBaseDelay,
	}, nil
}

// EmbedOne returns the embedding vector for a single text.
func (s *EmbeddingService) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in groups of batchSize, one request per group,
// issued sequentially with a short delay between consecutive requests.
// The returned slice has the same length and order as the input.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batchVectors, err := s.request(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", i, end, err)
		}
		vectors = append(vectors, batchVectors...)

		if end < len(texts) {
			time.Sleep(s.batchDelay)
		}
	}

	return vectors, nil
}

// EmbedOneWithRetry wraps EmbedOne with exponential backoff (1s, 2s, 4s).
// Auth failures are never retried.
func (s *EmbeddingService) EmbedOneWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt < retryAttempts; attempt++ {
		vector, err := s.EmbedOne(ctx, text)
		if err == nil {
			return vector, nil
		}
		if types.IsAuthError(err) {
			return nil, err
		}
		lastErr = err

		if attempt < retryAttempts-1 {
			delay := s.retryDelay * (1 << attempt)
			log.Printf("Embedding attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
			time.Sleep(delay)
		}
	}

	return nil, lastErr
}

func (s *EmbeddingService) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, upstreamError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts: %w", len(resp.Data), len(texts), types.ErrUpstreamShape)
	}

	// resp.Data carries an index per item; honor it so output order always
	// matches input order.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) || len(item.Embedding) == 0 {
			return nil, fmt.Errorf("embedding item index %d: %w", item.Index, types.ErrUpstreamShape)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d: %w", i, types.ErrUpstreamShape)
		}
	}

	return vectors, nil
}

func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "embedding request failed"
		}
		return &types.UpstreamError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    msg,
			Auth:       apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403,
		}
	}
	return err
}
