package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/storage"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MaxEventImageBytes bounds event image uploads.
const MaxEventImageBytes = 12 << 20

// startAtLayouts are the accepted startAt formats, tried in order. The
// second one is what HTML datetime-local inputs send.
var startAtLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseStartAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range startAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// EventHandler serves timed events.
type EventHandler struct {
	events domain.EventRepository
	images storage.Images
	now    func() time.Time
}

func NewEventHandler(events domain.EventRepository, images storage.Images) *EventHandler {
	return &EventHandler{events: events, images: images, now: time.Now}
}

// List returns every event, latest start first (GET /events).
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.events.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(events, NewEventResponse))
}

// Active returns the events running now (GET /events/active).
func (h *EventHandler) Active(c echo.Context) error {
	events, err := h.events.Active(c.Request().Context(), h.now(), domain.ActiveEventsLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapAll(events, NewEventResponse))
}

// eventHours reads durationHours, falling back to the default when it is
// absent or not a number. Fractions round up to whole hours.
func eventHours(n string) int {
	hours, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return domain.DefaultEventHours
	}
	return domain.ClampEventHours(int(math.Ceil(hours)))
}

// Create schedules an event (POST /events).
func (h *EventHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	caller, _ := middleware.IdentityFrom(c)

	var req eventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return jsonError(c, http.StatusBadRequest, "Title required")
	}
	startAt, ok := parseStartAt(req.StartAt)
	if !ok {
		return jsonError(c, http.StatusBadRequest, "Invalid startAt")
	}
	hours := eventHours(req.DurationHours.String())

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		file, err := formFile(c, MaxEventImageBytes)
		if errors.Is(err, errFileTooLarge) {
			return jsonError(c, http.StatusBadRequest, "File too large")
		}
		if err != nil {
			return jsonError(c, http.StatusBadRequest, "Image required (url or file)")
		}
		if file != nil {
			defer file.Close()
			if imageURL, err = h.images.Upload(ctx, file, storage.FolderEvents); err != nil {
				logger.Error("Event image upload failed", slog.String("error", err.Error()))
				return jsonError(c, http.StatusInternalServerError, "Upload failed")
			}
		}
	}
	if imageURL == "" {
		return jsonError(c, http.StatusBadRequest, "Image required (url or file)")
	}

	creator, err := ownerID(caller)
	if err != nil {
		return err
	}
	event := &domain.Event{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    imageURL,
		StartAt:     &surrealmodels.CustomDateTime{Time: startAt},
		EndAt:       &surrealmodels.CustomDateTime{Time: startAt.Add(time.Duration(hours) * time.Hour)},
		CreatedBy:   creator,
	}
	if err := event.Validate(); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid event")
	}
	created, err := h.events.Create(ctx, event)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewEventResponse(created))
}

// Delete removes an event (DELETE /events/:id). Only the creator or an
// admin may do so.
func (h *EventHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	caller, _ := middleware.IdentityFrom(c)

	event, err := h.events.FindByID(ctx, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	if !canModify(caller, event.CreatedBy) {
		return jsonError(c, http.StatusForbidden, "Forbidden")
	}
	if err := h.events.Delete(ctx, recordString(event.ID)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse)
}
