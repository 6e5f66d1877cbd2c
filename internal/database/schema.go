package database

import (
	"context"
	"fmt"
)

// schemaStatements define the indexes the stores rely on.
var schemaStatements = []string{
	"DEFINE INDEX IF NOT EXISTS user_username ON TABLE user FIELDS username UNIQUE",
	"DEFINE INDEX IF NOT EXISTS user_created ON TABLE user FIELDS createdAt",
	"DEFINE INDEX IF NOT EXISTS event_window ON TABLE event FIELDS startAt, endAt",
	"DEFINE INDEX IF NOT EXISTS reset_token ON TABLE password_reset FIELDS tokenHash UNIQUE",
	"DEFINE INDEX IF NOT EXISTS reset_expiry ON TABLE password_reset FIELDS expiresAt",
}

// EnsureSchema defines the indexes. It is idempotent.
func EnsureSchema(ctx context.Context, conn *Connection, timeouts Timeouts) error {
	c, err := NewClient[any](conn, timeouts)
	if err != nil {
		return err
	}
	for _, stmt := range schemaStatements {
		if err := c.Execute(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", stmt, err)
		}
	}
	return nil
}
