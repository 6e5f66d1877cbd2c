package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	// DefaultEventHours applies when a request does not carry a duration.
	DefaultEventHours = 24
	MinEventHours     = 1
	MaxEventHours     = 48
	// ActiveEventsLimit caps the number of running events returned at once.
	ActiveEventsLimit = 3
)

// Event is a timed community event. It is removed by the sweeper once EndAt
// has passed.
type Event struct {
	ID          *surrealmodels.RecordID       `json:"id,omitempty"`
	Title       string                        `json:"title" validate:"required,max=200"`
	Description string                        `json:"description"`
	ImageURL    string                        `json:"imageUrl" validate:"required,safeurl"`
	StartAt     *surrealmodels.CustomDateTime `json:"startAt" validate:"required"`
	EndAt       *surrealmodels.CustomDateTime `json:"endAt" validate:"required"`
	CreatedBy   *surrealmodels.RecordID       `json:"createdBy,omitempty" validate:"required"`
	CreatedAt   *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
}

// Validate runs the struct validation rules.
func (e *Event) Validate() error {
	return validatorInstance.Struct(e)
}

// ClampEventHours bounds a requested duration to the allowed window. Zero
// selects the default.
func ClampEventHours(h int) int {
	switch {
	case h == 0:
		return DefaultEventHours
	case h < MinEventHours:
		return MinEventHours
	case h > MaxEventHours:
		return MaxEventHours
	}
	return h
}

// IsActive reports whether the event is running at t.
func (e *Event) IsActive(t time.Time) bool {
	if e.StartAt == nil || e.EndAt == nil {
		return false
	}
	return !e.StartAt.Time.After(t) && t.Before(e.EndAt.Time)
}

// EventRepository stores events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	// List returns all events sorted by StartAt descending.
	List(ctx context.Context) ([]*Event, error)
	// Active returns at most limit events running at now, latest start first.
	Active(ctx context.Context, now time.Time, limit int) ([]*Event, error)
	FindByID(ctx context.Context, id string) (*Event, error)
	Delete(ctx context.Context, id string) error
	// DeleteEnded removes events whose EndAt is before now.
	DeleteEnded(ctx context.Context, now time.Time) (int, error)
}
