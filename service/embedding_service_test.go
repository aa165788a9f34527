package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/insightdesk/insightdesk-be/config"
	"github.com/insightdesk/insightdesk-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingAPIRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newEmbeddingTestServer fakes the embedding endpoint. Each input text gets
// a vector whose first component is the text length, so ordering mistakes
// are visible in the output.
func newEmbeddingTestServer(t *testing.T, requests *int32, respond func(w http.ResponseWriter, req embeddingAPIRequest, n int32)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(requests, 1)
		var req embeddingAPIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		respond(w, req, n)
	}))
}

func writeEmbeddings(w http.ResponseWriter, req embeddingAPIRequest) {
	data := make([]map[string]interface{}, len(req.Input))
	for i, text := range req.Input {
		data[i] = map[string]interface{}{
			"object":    "embedding",
			"index":     i,
			"embedding": []float32{float32(len(text)), 1},
		}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"object": "list",
		"data":   data,
		"model":  "text-embedding-3-small",
		"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
	})
}

func newTestEmbeddingService(t *testing.T, baseURL string) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(config.EmbeddingConfig{
		APIKey:  "test-key",
		BaseURL: baseURL + "/v1",
		Model:   "text-embedding-3-small",
	})
	require.NoError(t, err)
	svc.batchDelay = time.Millisecond
	svc.retryDelay = time.Millisecond
	return svc
}

func TestNewEmbeddingServiceRequiresCredential(t *testing.T) {
	_, err := NewEmbeddingService(config.EmbeddingConfig{Model: "text-embedding-3-small"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotConfigured))
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	var requests int32
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		writeEmbeddings(w, req)
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	for _, batchSize := range []int{1, 2, 100} {
		atomic.StoreInt32(&requests, 0)
		vectors, err := svc.EmbedBatch(context.Background(), texts, batchSize)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))
		for i, text := range texts {
			assert.Equal(t, float32(len(text)), vectors[i][0], "batchSize %d position %d", batchSize, i)
		}
	}

	// batchSize larger than the input makes exactly one request.
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestEmbedBatchSequentialBatches(t *testing.T) {
	var requests int32
	var sizes []int
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		sizes = append(sizes, len(req.Input))
		writeEmbeddings(w, req)
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	_, err := svc.EmbedBatch(context.Background(), texts, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestEmbedOneAuthErrorNotRetried(t *testing.T) {
	var requests int32
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Incorrect API key provided",
				"type":    "invalid_request_error",
			},
		})
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	_, err := svc.EmbedOneWithRetry(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, types.IsAuthError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "auth failures must not be retried")
}

func TestEmbedOneTransientErrorRetried(t *testing.T) {
	var requests int32
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"message": "temporarily overloaded",
					"type":    "server_error",
				},
			})
			return
		}
		writeEmbeddings(w, req)
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	vector, err := svc.EmbedOneWithRetry(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), vector[0])
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestEmbedOneRetriesExhausted(t *testing.T) {
	var requests int32
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "still broken",
				"type":    "server_error",
			},
		})
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	_, err := svc.EmbedOneWithRetry(context.Background(), "hello")
	require.Error(t, err)
	var ue *types.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestEmbedOneShapeError(t *testing.T) {
	var requests int32
	srv := newEmbeddingTestServer(t, &requests, func(w http.ResponseWriter, req embeddingAPIRequest, n int32) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   []interface{}{},
			"model":  "text-embedding-3-small",
		})
	})
	defer srv.Close()

	svc := newTestEmbeddingService(t, srv.URL)

	_, err := svc.EmbedOne(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamShape))
}
