package imagestore

import (
	"context"
	"io"
)

// ImageStore holds snapshot and audit photos behind opaque storage keys.
// Keys flow through reports unchanged; only this collaborator can resolve
// them back to bytes.
type ImageStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
