package storage

import "context"

// ObjectStorage persists raw document bytes. Keys follow the
// {companyId}/{projectId}/{documentId}/{filename} convention; Put must fail
// on an existing key rather than silently replace it.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
