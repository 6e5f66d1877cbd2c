package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

var _ domain.UserRepository = (*UserStore)(nil)

// UserStore implements domain.UserRepository on SurrealDB.
type UserStore struct {
	client Client[domain.User]
	counts Client[countRow]
}

type countRow struct {
	Total int64 `json:"total"`
}

// NewUserStore creates a UserStore on top of the connection.
func NewUserStore(conn *Connection, timeouts Timeouts) (*UserStore, error) {
	c, err := NewClient[domain.User](conn, timeouts)
	if err != nil {
		return nil, err
	}
	counts, err := NewClient[countRow](conn, timeouts)
	if err != nil {
		return nil, err
	}
	return &UserStore{client: c, counts: counts}, nil
}

// Create inserts the user. Role defaults to member.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return nil, NewDBError(ErrInvalidInput, "username is required")
	}
	role := user.Role
	if role == "" {
		role = domain.RoleMember
	}
	now := &surrealmodels.CustomDateTime{Time: time.Now().UTC()}
	titles := user.Titles
	if titles == nil {
		titles = []string{}
	}

	data := map[string]any{
		"username":     user.Username,
		"passwordHash": user.PasswordHash,
		"displayName":  user.DisplayName,
		"avatarUrl":    user.AvatarURL,
		"titles":       titles,
		"bio":          user.Bio,
		"cardTheme":    user.CardTheme,
		"email":        user.Email,
		"role":         string(role),
		"createdAt":    now,
		"updatedAt":    now,
	}
	created, err := s.client.Create(ctx, userTable, data)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// FindByID returns domain.ErrNotFound for unknown or malformed ids.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	rid, err := ParseRecordID(userTable, id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	user, err := s.client.Select(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return user, err
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findOne(ctx, "SELECT * FROM user WHERE username = $username LIMIT 1", map[string]any{"username": username})
}

func (s *UserStore) FindAnyAdmin(ctx context.Context) (*domain.User, error) {
	return s.findOne(ctx, "SELECT * FROM user WHERE role = $role LIMIT 1", map[string]any{"role": string(domain.RoleAdmin)})
}

func (s *UserStore) findOne(ctx context.Context, query string, params map[string]any) (*domain.User, error) {
	user, err := s.client.QueryOne(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// List searches username and displayName case-insensitively.
func (s *UserStore) List(ctx context.Context, q domain.UserQuery) ([]*domain.User, int64, error) {
	where := ""
	params := map[string]any{"limit": q.Limit, "start": q.Offset()}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		where = " WHERE string::lowercase(username) CONTAINS $q OR string::lowercase(displayName ?? '') CONTAINS $q"
		params["q"] = search
	}

	counts, err := s.counts.Query(ctx, "SELECT count() AS total FROM user"+where+" GROUP ALL", params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	var total int64
	if len(counts) > 0 {
		total = counts[0].Total
	}

	rows, err := s.client.Query(ctx, "SELECT * FROM user"+where+" ORDER BY createdAt DESC LIMIT $limit START $start", params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, &rows[i])
	}
	return users, total, nil
}

// Update applies the non-nil fields of patch.
func (s *UserStore) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	rid, err := ParseRecordID(userTable, id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	data := map[string]any{"updatedAt": &surrealmodels.CustomDateTime{Time: time.Now().UTC()}}
	if patch.DisplayName != nil {
		data["displayName"] = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		data["avatarUrl"] = *patch.AvatarURL
	}
	if patch.Titles != nil {
		data["titles"] = patch.Titles
	}
	if patch.Bio != nil {
		data["bio"] = *patch.Bio
	}
	if patch.CardTheme != nil {
		data["cardTheme"] = *patch.CardTheme
	}
	if patch.Email != nil {
		data["email"] = *patch.Email
	}

	user, err := s.client.Update(ctx, rid, data)
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return user, err
}

func (s *UserStore) SetPassword(ctx context.Context, id, passwordHash string) error {
	rid, err := ParseRecordID(userTable, id)
	if err != nil {
		return domain.ErrNotFound
	}
	_, err = s.client.Update(ctx, rid, map[string]any{
		"passwordHash": passwordHash,
		"updatedAt":    &surrealmodels.CustomDateTime{Time: time.Now().UTC()},
	})
	if errors.Is(err, ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	rid, err := ParseRecordID(userTable, id)
	if err != nil {
		return domain.ErrNotFound
	}
	return s.client.Delete(ctx, rid)
}

// isUniqueViolation detects SurrealDB unique index errors.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}
