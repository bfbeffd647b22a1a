package ports

import "context"

// BlobStore is durable key-addressed binary storage. It knows nothing about
// ordering or metadata; the catalog service keeps it consistent with the
// metadata index.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored blob key, used by the reconciliation pass.
	Keys(ctx context.Context) ([]string, error)
}
