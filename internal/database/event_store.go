package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.EventRepository = (*EventStore)(nil)

type EventStore struct {
	client Client[domain.Event]
}

func NewEventStore(conn *Connection, timeouts Timeouts) (*EventStore, error) {
	c, err := NewClient[domain.Event](conn, timeouts)
	if err != nil {
		return nil, err
	}
	return &EventStore{client: c}, nil
}

func (s *EventStore) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	if event == nil {
		return nil, NewDBError(ErrInvalidInput, "event cannot be nil")
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed for event: %w", err)
	}
	created, err := s.client.Create(ctx, eventTable, map[string]any{
		"title":       event.Title,
		"description": event.Description,
		"imageUrl":    event.ImageURL,
		"startAt":     event.StartAt,
		"endAt":       event.EndAt,
		"createdBy":   event.CreatedBy,
		"createdAt":   &surrealmodels.CustomDateTime{Time: time.Now().UTC()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

func (s *EventStore) List(ctx context.Context) ([]*domain.Event, error) {
	return s.query(ctx, "SELECT * FROM event ORDER BY startAt DESC", nil)
}

func (s *EventStore) Active(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	return s.query(ctx,
		"SELECT * FROM event WHERE startAt <= $now AND endAt > $now ORDER BY startAt DESC LIMIT $limit",
		map[string]any{"now": &surrealmodels.CustomDateTime{Time: now.UTC()}, "limit": limit})
}

func (s *EventStore) query(ctx context.Context, q string, params map[string]any) ([]*domain.Event, error) {
	rows, err := s.client.Query(ctx, q, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]*domain.Event, 0, len(rows))
	for i := range rows {
		events = append(events, &rows[i])
	}
	return events, nil
}

func (s *EventStore) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	rid, err := ParseRecordID(eventTable, id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	event, err := s.client.Select(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return event, err
}

func (s *EventStore) Delete(ctx context.Context, id string) error {
	rid, err := ParseRecordID(eventTable, id)
	if err != nil {
		return domain.ErrNotFound
	}
	return s.client.Delete(ctx, rid)
}

func (s *EventStore) DeleteEnded(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.client.Query(ctx, "DELETE event WHERE endAt < $now RETURN BEFORE",
		map[string]any{"now": &surrealmodels.CustomDateTime{Time: now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete ended events: %w", err)
	}
	return len(rows), nil
}
