package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/auth"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/storage"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MaxGalleryBytes bounds gallery uploads.
const MaxGalleryBytes = 12 << 20

// GalleryHandler serves the shared photo gallery.
type GalleryHandler struct {
	gallery domain.GalleryRepository
	images  storage.Images
}

func NewGalleryHandler(gallery domain.GalleryRepository, images storage.Images) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, images: images}
}

// List returns all items, newest first (GET /gallery).
func (h *GalleryHandler) List(c echo.Context) error {
	items, err := h.gallery.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(items, NewGalleryResponse))
}

// Create adds an item from a URL or an uploaded file (POST /gallery).
func (h *GalleryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	caller, _ := middleware.IdentityFrom(c)

	var req galleryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	url := strings.TrimSpace(req.URL)

	if url == "" {
		file, err := formFile(c, MaxGalleryBytes)
		if errors.Is(err, errFileTooLarge) {
			return jsonError(c, http.StatusBadRequest, "File too large")
		}
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "No image")
		}
		if file != nil {
			defer file.Close()
			if url, err = h.images.Upload(ctx, file, storage.FolderGallery); err != nil {
				logger.Error("Gallery upload failed", slog.String("error", err.Error()))
				return jsonError(c, http.StatusInternalServerError, "Upload failed")
			}
		}
	}
	if url == "" {
		return jsonError(c, http.StatusBadRequest, "No image")
	}

	uploader, err := ownerID(caller)
	if err != nil {
		return err
	}
	item := &domain.GalleryItem{URL: url, Caption: strings.TrimSpace(req.Caption), UploadedBy: uploader}
	if err := item.Validate(); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid image")
	}
	created, err := h.gallery.Create(ctx, item)
	if err != nil {
		return err
	}
	logger.Info("Gallery item created", slog.String("url", created.URL))
	return c.JSON(http.StatusOK, NewGalleryResponse(created))
}

// Delete removes an item (DELETE /gallery/:id). Only the uploader or an
// admin may do so.
func (h *GalleryHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	caller, _ := middleware.IdentityFrom(c)

	item, err := h.gallery.FindByID(ctx, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	if !canModify(caller, item.UploadedBy) {
		return jsonError(c, http.StatusForbidden, "Forbidden")
	}
	if err := h.gallery.Delete(ctx, recordString(item.ID)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse)
}

// canModify reports whether caller owns the record or is an admin.
func canModify(caller auth.Identity, owner *surrealmodels.RecordID) bool {
	return caller.IsAdmin() || (owner != nil && owner.String() == caller.UserID)
}

// ownerID converts the caller's "user:<id>" into a record reference.
func ownerID(caller auth.Identity) (*surrealmodels.RecordID, error) {
	table, key, found := strings.Cut(caller.UserID, ":")
	if !found || table == "" || key == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	id := surrealmodels.NewRecordID(table, key)
	return &id, nil
}
