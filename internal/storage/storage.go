package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/config"
)

// BlobStore holds evidence files outside the database. Delete must be
// idempotent: removing a missing blob is not an error.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
