package driven

import "context"

// BlobStore keeps raw file bytes under opaque keys
type BlobStore interface {
	// Put stores data under key, replacing any previous content
	Put(ctx context.Context, key string, data []byte) error

	// Get returns all bytes stored under key, or domain.ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
