package driven

import "context"

// BlobStore persists raw document bytes. The core never manages storage
// lifecycle beyond Put at ingestion and Get for re-ingestion; refs are
// opaque handles.
type BlobStore interface {
	// Put stores the bytes and returns an opaque storage ref.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get returns the bytes for a storage ref.
	// Returns domain.ErrNotFound when the ref is unknown.
	Get(ctx context.Context, ref string) ([]byte, error)

	// Delete removes the bytes for a storage ref.
	Delete(ctx context.Context, ref string) error
}
