package storage

import (
	"fmt"

	"github.com/nfrund/goonies/internal/cloudinary"
	"github.com/nfrund/goonies/internal/config"
)

// NewImages picks the image backend named by STORAGE_PROVIDER. The local
// backend also returns its Store so the server can serve the files.
func NewImages(cfg config.Provider, cld *cloudinary.Client) (Images, *AferoStore, error) {
	switch cfg.GetStorageProvider() {
	case "cloudinary":
		if cld == nil {
			return nil, nil, fmt.Errorf("storage provider is 'cloudinary' but %w", cloudinary.ErrNotConfigured)
		}
		return cld, nil, nil
	case "local":
		store := NewDiskStore(cfg.GetStorageLocalDir())
		return NewLocalImages(store, cfg.GetAppBaseURL()), store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage provider: %s", cfg.GetStorageProvider())
	}
}
