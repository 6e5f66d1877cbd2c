package domain

import "context"

// AllowEntry grants a username the right to register.
type AllowEntry struct {
	Username string `json:"username"`
}

// AllowRepository manages the invite allow-list.
type AllowRepository interface {
	// List returns all entries sorted by username.
	List(ctx context.Context) ([]*AllowEntry, error)
	// Upsert adds the username, succeeding when it already exists.
	Upsert(ctx context.Context, username string) (*AllowEntry, error)
	Delete(ctx context.Context, username string) error
	IsAllowed(ctx context.Context, username string) (bool, error)
}
