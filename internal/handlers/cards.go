package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/card"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/metrics"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/storage"
)

// MaxPreviewBytes bounds preview uploads.
const MaxPreviewBytes = 8 << 20

// Render outcomes recorded in metrics.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// CardHandler redirects card requests to their render URLs.
type CardHandler struct {
	users      domain.UserRepository
	compositor *card.Compositor
	images     storage.Images
	metrics    *metrics.Card
}

func NewCardHandler(users domain.UserRepository, compositor *card.Compositor, images storage.Images, m *metrics.Card) *CardHandler {
	return &CardHandler{users: users, compositor: compositor, images: images, metrics: m}
}

// PreviewUpload stores an avatar for the preview page and returns its URL
// (POST /cards/preview-upload).
func (h *CardHandler) PreviewUpload(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	file, err := formFile(c, MaxPreviewBytes)
	if errors.Is(err, errFileTooLarge) {
		return jsonError(c, http.StatusBadRequest, "File too large")
	}
	if err != nil || file == nil {
		return jsonError(c, http.StatusBadRequest, "No file")
	}
	defer file.Close()

	url, err := h.images.Upload(ctx, file, storage.FolderPreview)
	if err != nil {
		logger.Error("Preview upload failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Upload failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Preview renders a card from query parameters (GET /cards/preview.png).
func (h *CardHandler) Preview(c echo.Context) error {
	q := c.QueryParams()
	theme := q.Get("theme")

	opts, err := card.ParseOptions(q)
	if err != nil {
		return h.fail(c, "preview", theme, "preview", err)
	}
	subject := card.NewPreviewSubject(card.PreviewInput{
		Theme:         theme,
		Name:          q.Get("name"),
		Bio:           q.Get("bio"),
		Tags:          q["tag"],
		DelimitedTags: q.Get("tags"),
		Avatar:        q.Get("avatar"),
	})
	return h.redirect(c, "preview", subject, opts)
}

// Profile renders the card of a stored member (GET /cards/:ref.png). ref is
// a record id, a username or a bare id.
func (h *CardHandler) Profile(c echo.Context) error {
	file := c.Param("file")
	ref, found := strings.CutSuffix(file, ".png")
	ref = strings.TrimSpace(ref)
	if !found || ref == "" {
		h.metrics.Render("profile", outcomeNotFound)
		return c.String(http.StatusNotFound, "not found")
	}
	theme := c.QueryParam("theme")

	user, err := h.findSubject(c.Request().Context(), ref)
	if errors.Is(err, domain.ErrNotFound) {
		h.metrics.Render("profile", outcomeNotFound)
		return c.String(http.StatusNotFound, "not found")
	}
	if err != nil {
		return h.fail(c, "profile", theme, ref, err)
	}

	opts, err := card.ParseOptions(c.QueryParams())
	if err != nil {
		return h.fail(c, "profile", theme, ref, err)
	}
	return h.redirect(c, "profile", card.NewProfileSubject(user, theme), opts)
}

func (h *CardHandler) findSubject(ctx context.Context, ref string) (*domain.User, error) {
	if strings.HasPrefix(ref, "user:") {
		return h.users.FindByID(ctx, ref)
	}
	user, err := h.users.FindByUsername(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return h.users.FindByID(ctx, ref)
	}
	return user, err
}

func (h *CardHandler) redirect(c echo.Context, route string, s card.Subject, opts card.Options) error {
	url, _, err := h.compositor.Render(c.Request().Context(), s, opts)
	if err != nil {
		return h.fail(c, route, s.ThemeKey(), s.Name(), err)
	}
	h.metrics.Render(route, outcomeOK)
	return c.Redirect(http.StatusFound, url)
}

// fail logs a composition failure and answers with a bare 500.
func (h *CardHandler) fail(c echo.Context, route, theme, subject string, err error) error {
	h.metrics.Render(route, outcomeError)
	middleware.FromContext(c.Request().Context()).Error("Card composition failed",
		slog.String("theme", theme),
		slog.String("subject", subject),
		slog.String("path", c.Request().URL.Path),
		slog.String("error", err.Error()),
	)
	return c.String(http.StatusInternalServerError, "error")
}
