package database

import (
	"context"
	"fmt"

	"github.com/nfrund/goonies/internal/config"
	"github.com/redis/go-redis/v9"
)

// Stores groups the repositories backed by one connection.
type Stores struct {
	Users   *UserStore
	Allow   *AllowStore
	Gallery *GalleryStore
	Events  *EventStore
	Resets  *PasswordResetStore
}

func NewStores(conn *Connection, timeouts Timeouts) (*Stores, error) {
	var (
		s   Stores
		err error
	)
	if s.Users, err = NewUserStore(conn, timeouts); err != nil {
		return nil, err
	}
	if s.Allow, err = NewAllowStore(conn, timeouts); err != nil {
		return nil, err
	}
	if s.Gallery, err = NewGalleryStore(conn, timeouts); err != nil {
		return nil, err
	}
	if s.Events, err = NewEventStore(conn, timeouts); err != nil {
		return nil, err
	}
	if s.Resets, err = NewPasswordResetStore(conn, timeouts); err != nil {
		return nil, err
	}
	return &s, nil
}

// Open connects, applies the schema and builds the stores. The caller owns
// the returned connection.
func Open(ctx context.Context, cfg config.Provider) (*Connection, *Stores, error) {
	conn := NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	timeouts := TimeoutsFrom(cfg)
	if err := EnsureSchema(ctx, conn, timeouts); err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}
	stores, err := NewStores(conn, timeouts)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}
	return conn, stores, nil
}

// OpenRedis connects to REDIS_URL. It returns nil when no URL is configured.
func OpenRedis(ctx context.Context, url string) (redis.UniversalClient, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
