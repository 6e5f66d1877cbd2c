package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.PasswordResetRepository = (*PasswordResetStore)(nil)

type PasswordResetStore struct {
	client Client[domain.PasswordReset]
}

func NewPasswordResetStore(conn *Connection, timeouts Timeouts) (*PasswordResetStore, error) {
	c, err := NewClient[domain.PasswordReset](conn, timeouts)
	if err != nil {
		return nil, err
	}
	return &PasswordResetStore{client: c}, nil
}

func (s *PasswordResetStore) Create(ctx context.Context, reset *domain.PasswordReset) (*domain.PasswordReset, error) {
	if reset == nil || reset.UserID == nil || reset.TokenHash == "" || reset.ExpiresAt == nil {
		return nil, NewDBError(ErrInvalidInput, "userId, tokenHash and expiresAt are required")
	}
	created, err := s.client.Create(ctx, passwordResetTable, map[string]any{
		"userId":    reset.UserID,
		"tokenHash": reset.TokenHash,
		"expiresAt": reset.ExpiresAt,
		"used":      false,
		"createdAt": &surrealmodels.CustomDateTime{Time: time.Now().UTC()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create password reset: %w", err)
	}
	return created, nil
}

func (s *PasswordResetStore) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	reset, err := s.client.QueryOne(ctx, "SELECT * FROM password_reset WHERE tokenHash = $hash LIMIT 1", map[string]any{"hash": tokenHash})
	if err != nil {
		return nil, err
	}
	if reset == nil {
		return nil, domain.ErrNotFound
	}
	return reset, nil
}

func (s *PasswordResetStore) MarkUsed(ctx context.Context, id string) error {
	rid, err := ParseRecordID(passwordResetTable, id)
	if err != nil {
		return domain.ErrNotFound
	}
	_, err = s.client.Update(ctx, rid, map[string]any{"used": true})
	return err
}

func (s *PasswordResetStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.client.Query(ctx, "DELETE password_reset WHERE expiresAt < $now RETURN BEFORE",
		map[string]any{"now": &surrealmodels.CustomDateTime{Time: now.UTC()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired resets: %w", err)
	}
	return len(rows), nil
}
