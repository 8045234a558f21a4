// Package filesystem implements the blob-store port on a local
// directory. Refs are plain filenames inside the store root.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scandex-labs/scandex-cli/internal/core/domain"
	"github.com/scandex-labs/scandex-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore stores raw document bytes as files under a root directory.
type BlobStore struct {
	root string
}

// New creates a blob store rooted at the given directory.
// If root is empty, defaults to ~/.scandex/data/blobs.
func New(root string) (*BlobStore, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, ".scandex", "data", "blobs")
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}

	return &BlobStore{root: root}, nil
}

// Put stores the bytes and returns the filename as the ref.
func (b *BlobStore) Put(_ context.Context, name string, data []byte) (string, error) {
	// Refs never escape the store root.
	ref := filepath.Base(name)
	if ref == "." || ref == string(filepath.Separator) {
		return "", fmt.Errorf("%w: blob name %q", domain.ErrInvalidInput, name)
	}

	if err := os.WriteFile(filepath.Join(b.root, ref), data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return ref, nil
}

// Get returns the bytes for a ref.
func (b *BlobStore) Get(_ context.Context, ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.root, filepath.Base(ref)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

// Delete removes the bytes for a ref. Deleting a missing ref is not an
// error.
func (b *BlobStore) Delete(_ context.Context, ref string) error {
	err := os.Remove(filepath.Join(b.root, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}
