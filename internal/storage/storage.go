// Package storage persists uploaded profile pictures. The disk store
// serves files from the API itself under /uploads; the S3 store puts them
// into a bucket and links to its public URL.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/iliyamo/golf-tee-booking/internal/config"
)

// PictureStore saves an object under key and returns the reference that
// clients use to fetch it.
type PictureStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.UploadConfig) (PictureStore, error) {
	switch cfg.Driver {
	case "", "disk":
		return NewDisk(cfg.Dir, "/uploads")
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
