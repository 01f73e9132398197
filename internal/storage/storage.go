package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload writes an object to the storage provider under the given key.
	// The object must be fully written before any record referencing it is created.
	Upload(ctx context.Context, objectKey string, contentType string, body io.Reader) error

	// ObjectURL returns a durable retrieval URL for a previously uploaded object.
	ObjectURL(objectKey string) string

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
