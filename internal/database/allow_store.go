package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.AllowRepository = (*AllowStore)(nil)

// AllowStore keeps one record per allowed username, keyed by the username
// itself so upserts are idempotent.
type AllowStore struct {
	client Client[domain.AllowEntry]
}

func NewAllowStore(conn *Connection, timeouts Timeouts) (*AllowStore, error) {
	c, err := NewClient[domain.AllowEntry](conn, timeouts)
	if err != nil {
		return nil, err
	}
	return &AllowStore{client: c}, nil
}

func allowID(username string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(allowTable, username)
}

func (s *AllowStore) List(ctx context.Context) ([]*domain.AllowEntry, error) {
	rows, err := s.client.Query(ctx, "SELECT username FROM allow ORDER BY username ASC", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list allow-list: %w", err)
	}
	entries := make([]*domain.AllowEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, &rows[i])
	}
	return entries, nil
}

func (s *AllowStore) Upsert(ctx context.Context, username string) (*domain.AllowEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewDBError(ErrInvalidInput, "username is required")
	}
	entry, err := s.client.QueryOne(ctx, "UPSERT $id CONTENT $data", map[string]any{
		"id":   allowID(username),
		"data": map[string]any{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert allow entry: %w", err)
	}
	if entry == nil {
		entry = &domain.AllowEntry{Username: username}
	}
	return entry, nil
}

func (s *AllowStore) Delete(ctx context.Context, username string) error {
	return s.client.Delete(ctx, allowID(strings.TrimSpace(username)))
}

func (s *AllowStore) IsAllowed(ctx context.Context, username string) (bool, error) {
	entry, err := s.client.QueryOne(ctx, "SELECT username FROM $id", map[string]any{"id": allowID(username)})
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}
