package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ErrEmptyKey is returned when an operation is attempted without an object key.
var ErrEmptyKey = errors.New("storage: empty object key")

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload stores body under objectKey. size may be -1 when unknown.
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider. Deleting a
	// missing object is not an error.
	DeleteObject(ctx context.Context, objectKey string) error
}
