package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/goonies/internal/config"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Client is a type-safe view over the connection for records of type T.
type Client[T any] interface {
	// Create inserts data into table and returns the stored record.
	Create(ctx context.Context, table string, data any) (*T, error)
	// Select returns the record or an error matching ErrNotFound.
	Select(ctx context.Context, id surrealmodels.RecordID) (*T, error)
	// Update merges data into the record.
	Update(ctx context.Context, id surrealmodels.RecordID, data any) (*T, error)
	Delete(ctx context.Context, id surrealmodels.RecordID) error

	// Query executes a raw query and returns the rows of the last statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)
	// QueryOne returns the first row, or (nil, nil) when there is none.
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)
	// Execute runs a statement whose rows are not needed.
	Execute(ctx context.Context, query string, params map[string]any) error
}

// Timeouts holds default deadlines applied to reads and writes.
type Timeouts struct {
	Query   time.Duration
	Execute time.Duration
}

// TimeoutsFrom reads the deadlines from configuration.
func TimeoutsFrom(cfg config.Provider) Timeouts {
	return Timeouts{Query: cfg.GetDBQueryTimeout(), Execute: cfg.GetDBExecuteTimeout()}
}

type client[T any] struct {
	conn     *Connection
	timeouts Timeouts
}

// NewClient creates a new type-safe database client.
func NewClient[T any](conn *Connection, timeouts Timeouts) (Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}
	if timeouts.Query <= 0 || timeouts.Execute <= 0 {
		return nil, NewDBError(ErrInvalidInput, "timeouts must be positive durations")
	}
	return &client[T]{conn: conn, timeouts: timeouts}, nil
}

// run executes query and decodes the last statement's rows into R.
func run[R any](ctx context.Context, conn *Connection, query string, params map[string]any) ([]R, error) {
	var rows []R
	err := conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]R](ctx, db, query, params)
		if err != nil {
			return err
		}
		if results == nil || len(*results) == 0 {
			return nil
		}
		last := (*results)[len(*results)-1]
		if last.Status != "OK" {
			return fmt.Errorf("%w: status %s", ErrQueryFailed, last.Status)
		}
		rows = last.Result
		return nil
	})
	if err != nil {
		return nil, NewDBError(err, "query failed").WithQuery(query)
	}
	return rows, nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.timeouts.Query, ContextKeyQueryTimeout)
	defer cancel()
	return run[T](ctx, c.conn, query, params)
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	rows, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.timeouts.Execute, ContextKeyExecuteTimeout)
	defer cancel()
	_, err := run[any](ctx, c.conn, query, params)
	return err
}

func (c *client[T]) Create(ctx context.Context, table string, data any) (*T, error) {
	if table == "" || data == nil {
		return nil, NewDBError(ErrInvalidInput, "table and data are required")
	}
	ctx, cancel := getTimeoutFromContext(ctx, c.timeouts.Execute, ContextKeyExecuteTimeout)
	defer cancel()

	rows, err := run[T](ctx, c.conn, "CREATE type::table($table) CONTENT $data", map[string]any{"table": table, "data": data})
	if err != nil {
		return nil, WrapError(err, "create operation failed")
	}
	if len(rows) == 0 {
		return nil, NewDBError(ErrQueryFailed, "create returned no record")
	}
	return &rows[0], nil
}

func (c *client[T]) Select(ctx context.Context, id surrealmodels.RecordID) (*T, error) {
	row, err := c.QueryOne(ctx, "SELECT * FROM $id", map[string]any{"id": id})
	if err != nil {
		return nil, WrapError(err, "select operation failed")
	}
	if row == nil {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return row, nil
}

func (c *client[T]) Update(ctx context.Context, id surrealmodels.RecordID, data any) (*T, error) {
	if data == nil {
		return nil, NewDBError(ErrInvalidInput, "data cannot be nil")
	}
	ctx, cancel := getTimeoutFromContext(ctx, c.timeouts.Execute, ContextKeyExecuteTimeout)
	defer cancel()

	rows, err := run[T](ctx, c.conn, "UPDATE $id MERGE $data RETURN AFTER", map[string]any{"id": id, "data": data})
	if err != nil {
		return nil, WrapError(err, "update operation failed")
	}
	if len(rows) == 0 {
		return nil, NewDBError(ErrNotFound, "record not found")
	}
	return &rows[0], nil
}

func (c *client[T]) Delete(ctx context.Context, id surrealmodels.RecordID) error {
	return c.Execute(ctx, "DELETE $id", map[string]any{"id": id})
}
