package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// GalleryItem is one shared photo.
type GalleryItem struct {
	ID         *surrealmodels.RecordID       `json:"id,omitempty"`
	URL        string                        `json:"url" validate:"required,safeurl"`
	Caption    string                        `json:"caption" validate:"max=500"`
	UploadedBy *surrealmodels.RecordID       `json:"uploadedBy,omitempty" validate:"required"`
	CreatedAt  *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
}

// Validate runs the struct validation rules.
func (g *GalleryItem) Validate() error {
	return validatorInstance.Struct(g)
}

// GalleryRepository stores gallery items.
type GalleryRepository interface {
	Create(ctx context.Context, item *GalleryItem) (*GalleryItem, error)
	// List returns items sorted newest first.
	List(ctx context.Context) ([]*GalleryItem, error)
	FindByID(ctx context.Context, id string) (*GalleryItem, error)
	Delete(ctx context.Context, id string) error
}
