package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// LocalPrefix is the route prefix local uploads are served from.
const LocalPrefix = "/uploads"

// LocalImages saves images into a Store and serves them from baseURL.
type LocalImages struct {
	store   Store
	baseURL string
}

// NewLocalImages creates a LocalImages. baseURL is the public origin of the
// API, without a trailing slash.
func NewLocalImages(store Store, baseURL string) *LocalImages {
	return &LocalImages{store: store, baseURL: baseURL}
}

// Upload saves r as <folder>/<uuid>.jpg.
func (l *LocalImages) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	name := path.Join(folder, uuid.NewString()+".jpg")
	if _, err := l.store.Save(ctx, name, r); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return l.baseURL + LocalPrefix + "/" + name, nil
}
