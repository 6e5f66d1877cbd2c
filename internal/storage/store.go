// Package storage provides the upload backends for avatars, gallery images,
// event images and card previews.
package storage

import (
	"context"
	"io"
)

// Store defines the interface for a file storage backend.
type Store interface {
	Save(ctx context.Context, path string, reader io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Upload folders used by the handlers.
const (
	FolderGallery = "goonies"
	FolderAvatars = "goonies/avatars"
	FolderEvents  = "goonies/events"
	FolderPreview = "goonies/preview"
)

// Images stores an uploaded image under folder and returns its public URL.
// cloudinary.Client satisfies it directly.
type Images interface {
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)
}
