package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/domain"
)

// AllowHandler manages the registration allow-list. All routes are admin
// only.
type AllowHandler struct {
	allow domain.AllowRepository
}

func NewAllowHandler(allow domain.AllowRepository) *AllowHandler {
	return &AllowHandler{allow: allow}
}

// List returns every allowed username, sorted (GET /allow).
func (h *AllowHandler) List(c echo.Context) error {
	entries, err := h.allow.List(c.Request().Context())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*domain.AllowEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Add upserts a username (POST /allow).
func (h *AllowHandler) Add(c echo.Context) error {
	var req allowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return jsonError(c, http.StatusBadRequest, "Missing username")
	}
	if _, err := h.allow.Upsert(c.Request().Context(), username); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse)
}

// Remove deletes a username (DELETE /allow/:username). Removing an absent
// name succeeds.
func (h *AllowHandler) Remove(c echo.Context) error {
	if err := h.allow.Delete(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse)
}
