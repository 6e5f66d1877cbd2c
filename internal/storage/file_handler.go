package storage

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/middleware"
)

// FileHandler serves files written by LocalImages.
type FileHandler struct {
	store Store
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(s Store) *FileHandler {
	return &FileHandler{store: s}
}

// Serve streams the file named by the wildcard path parameter.
func (h *FileHandler) Serve(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	name := c.Param("*")
	content, err := h.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrInvalidPath) {
			return c.String(http.StatusNotFound, "not found")
		}
		logger.Error("Failed to open stored file", slog.String("path", name), slog.String("error", err.Error()))
		return c.String(http.StatusInternalServerError, "error")
	}
	defer content.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, contentType, content)
}
