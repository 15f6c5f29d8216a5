package common

import (
	"context"
	"io"
)

// BlobStore is the binary store backing uploaded media. Implementations
// must fail fast with ErrUnavailable while Ready reports false.
type BlobStore interface {
	Ready() bool
	Put(ctx context.Context, r io.Reader, suggestedName string, meta BlobMeta) (StoredBlob, error)
	Open(ctx context.Context, storedName string) (*BlobReader, error)
	// Delete treats a missing object as success
	Delete(ctx context.Context, objectID string) error
}

// TokenVerifier resolves a bearer credential to the identity provider subject
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
