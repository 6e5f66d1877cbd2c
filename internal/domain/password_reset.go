package domain

import (
	"context"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

// PasswordReset records a pending reset. Only the token hash is persisted.
type PasswordReset struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	UserID    *surrealmodels.RecordID       `json:"userId"`
	TokenHash string                        `json:"tokenHash"`
	ExpiresAt *surrealmodels.CustomDateTime `json:"expiresAt"`
	Used      bool                          `json:"used"`
	CreatedAt *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
}

// Usable reports whether the reset can still be redeemed at t.
func (r *PasswordReset) Usable(t time.Time) bool {
	return r != nil && !r.Used && r.ExpiresAt != nil && t.Before(r.ExpiresAt.Time)
}

// PasswordResetRepository stores reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *PasswordReset) (*PasswordReset, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	MarkUsed(ctx context.Context, id string) error
	// DeleteExpired removes resets whose ExpiresAt is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// PasswordResetRequested is published when a member asks for a reset link.
type PasswordResetRequested struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}
