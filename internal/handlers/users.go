package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/card"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/storage"
)

// MaxAvatarBytes bounds avatar uploads.
const MaxAvatarBytes = 8 << 20

// UserHandler serves the member directory and profiles.
type UserHandler struct {
	users  domain.UserRepository
	images storage.Images
}

func NewUserHandler(users domain.UserRepository, images storage.Images) *UserHandler {
	return &UserHandler{users: users, images: images}
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	if err != nil {
		return def
	}
	return v
}

// List returns one page of members (GET /users?q=&page=&limit=).
func (h *UserHandler) List(c echo.Context) error {
	q := domain.UserQuery{
		Search: strings.TrimSpace(c.QueryParam("q")),
		Page:   max(1, queryInt(c, "page", domain.DefaultPage)),
		Limit:  min(domain.MaxPageSize, max(1, queryInt(c, "limit", domain.DefaultPageSize))),
	}

	users, total, err := h.users.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return c.JSON(http.StatusOK, UserPage{
		Items: mapAll(users, publicUser),
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
		Pages: max(1, pages),
	})
}

// Me returns the caller's own profile (GET /users/me).
func (h *UserHandler) Me(c echo.Context) error {
	id, _ := middleware.IdentityFrom(c)
	user, err := h.users.FindByID(c.Request().Context(), id.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewUserResponse(user))
}

// UpdateMe patches the caller's profile (PATCH /users/me). Empty fields are
// left as they are. A multipart "file" replaces the avatar.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	id, _ := middleware.IdentityFrom(c)

	var req profileRequest
	if err := bind(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid profile data")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid profile data")
	}

	var patch domain.UserPatch
	if v := strings.TrimSpace(req.DisplayName); v != "" {
		patch.DisplayName = &v
	}
	if v := strings.TrimSpace(req.AvatarURL); v != "" {
		patch.AvatarURL = &v
	}
	if v := strings.TrimSpace(req.Bio); v != "" {
		patch.Bio = &v
	}
	if v := strings.TrimSpace(req.CardTheme); v != "" {
		if !card.IsTheme(v) {
			return jsonError(c, http.StatusBadRequest, "Invalid card theme")
		}
		theme := string(card.ParseTheme(v))
		patch.CardTheme = &theme
	}
	if v := strings.TrimSpace(req.Email); v != "" {
		patch.Email = &v
	}
	var formTitles []string
	if isMultipart(c) {
		if form, err := c.MultipartForm(); err == nil {
			formTitles = form.Value["titles"]
		}
	}
	if titles, ok := parseTitles(req.Titles, formTitles); ok {
		patch.Titles = titles
	}

	file, err := formFile(c, MaxAvatarBytes)
	if errors.Is(err, errFileTooLarge) {
		return jsonError(c, http.StatusBadRequest, "File too large")
	}
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid profile data")
	}
	if file != nil {
		defer file.Close()
		url, err := h.images.Upload(ctx, file, storage.FolderAvatars)
		if err != nil {
			logger.Error("Avatar upload failed", slog.String("error", err.Error()))
			return jsonError(c, http.StatusInternalServerError, "Upload failed")
		}
		patch.AvatarURL = &url
	}

	if patch.Empty() {
		return h.Me(c)
	}
	user, err := h.users.Update(ctx, id.UserID, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewUserResponse(user))
}

// Delete removes a member (DELETE /users/:id, admin only). Admins and the
// caller themself cannot be deleted.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	caller, _ := middleware.IdentityFrom(c)

	user, err := h.users.FindByID(ctx, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return jsonError(c, http.StatusBadRequest, "Cannot delete admin users")
	}
	if user.IDString() == caller.UserID {
		return jsonError(c, http.StatusBadRequest, "Cannot delete yourself")
	}
	if err := h.users.Delete(ctx, user.IDString()); err != nil {
		return err
	}
	middleware.FromContext(ctx).Info("User deleted", slog.String("user_id", user.IDString()), slog.String("by", caller.UserID))
	return c.JSON(http.StatusOK, okResponse)
}
