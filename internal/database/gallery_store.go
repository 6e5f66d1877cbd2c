package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.GalleryRepository = (*GalleryStore)(nil)

type GalleryStore struct {
	client Client[domain.GalleryItem]
}

func NewGalleryStore(conn *Connection, timeouts Timeouts) (*GalleryStore, error) {
	c, err := NewClient[domain.GalleryItem](conn, timeouts)
	if err != nil {
		return nil, err
	}
	return &GalleryStore{client: c}, nil
}

func (s *GalleryStore) Create(ctx context.Context, item *domain.GalleryItem) (*domain.GalleryItem, error) {
	if item == nil {
		return nil, NewDBError(ErrInvalidInput, "gallery item cannot be nil")
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for gallery item: %w", err)
	}
	created, err := s.client.Create(ctx, galleryTable, map[string]any{
		"url":        item.URL,
		"caption":    item.Caption,
		"uploadedBy": item.UploadedBy,
		"createdAt":  &surrealmodels.CustomDateTime{Time: time.Now().UTC()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery item: %w", err)
	}
	return created, nil
}

func (s *GalleryStore) List(ctx context.Context) ([]*domain.GalleryItem, error) {
	rows, err := s.client.Query(ctx, "SELECT * FROM gallery ORDER BY createdAt DESC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}
	items := make([]*domain.GalleryItem, 0, len(rows))
	for i := range rows {
		items = append(items, &rows[i])
	}
	return items, nil
}

func (s *GalleryStore) FindByID(ctx context.Context, id string) (*domain.GalleryItem, error) {
	rid, err := ParseRecordID(galleryTable, id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	item, err := s.client.Select(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (s *GalleryStore) Delete(ctx context.Context, id string) error {
	rid, err := ParseRecordID(galleryTable, id)
	if err != nil {
		return domain.ErrNotFound
	}
	return s.client.Delete(ctx, rid)
}
