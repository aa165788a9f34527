package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline and search failure modes. Callers branch on
// these with errors.Is, never by inspecting message content.
var (
	// ErrNotConfigured means a required credential or setting is absent.
	ErrNotConfigured = errors.New("not configured")

	// ErrEmptyContent means extraction or chunking produced no usable text.
	ErrEmptyContent = errors.New("no text content")

	// ErrUnsupportedType means no extraction adapter matches the MIME type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrConsistency means chunk and embedding counts diverged.
	ErrConsistency = errors.New("chunk/embedding count mismatch")

	// ErrDimensionMismatch means two vectors of different length were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUpstreamShape means the embedding API replied without the expected
	// vector payload.
	ErrUpstreamShape = errors.New("unexpected embedding response shape")
)

// UpstreamError carries the status and message of a failed embedding API call.
// Auth true marks authentication/authorization failures, which are never retried.
type UpstreamError struct {
	StatusCode int
	Message    string
	Auth       bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("embedding API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is an upstream auth failure.
func IsAuthError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Auth
}
