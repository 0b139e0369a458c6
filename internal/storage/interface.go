package storage

import (
	"context"
	"io"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks micasa/internal/storage Storage

// Object is a stored blob opened for reading. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Storage defines the interface for object storage operations.
type Storage interface {
	// Put uploads an object under key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Get opens an object. Returns apperrors.ErrObjectNotFound for unknown keys.
	Get(ctx context.Context, key string) (*Object, error)
	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Ensure both backends implement Storage interface
var (
	_ Storage = (*S3Client)(nil)
	_ Storage = (*GridFSStorage)(nil)
)
