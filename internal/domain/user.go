package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Role is the capability level of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents a goonie. PasswordHash is never rendered to clients; the
// handlers map users onto response DTOs.
type User struct {
	ID           *surrealmodels.RecordID       `json:"id,omitempty"`
	Username     string                        `json:"username"`
	PasswordHash string                        `json:"passwordHash,omitempty"`
	DisplayName  string                        `json:"displayName"`
	AvatarURL    string                        `json:"avatarUrl"`
	Titles       []string                      `json:"titles"`
	Bio          string                        `json:"bio"`
	CardTheme    string                        `json:"cardTheme"`
	Email        string                        `json:"email"`
	Role         Role                          `json:"role"`
	CreatedAt    *surrealmodels.CustomDateTime `json:"createdAt,omitempty"`
	UpdatedAt    *surrealmodels.CustomDateTime `json:"updatedAt,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IDString returns the record id as "user:<id>", or "" when unset.
func (u *User) IDString() string {
	if u == nil || u.ID == nil {
		return ""
	}
	return u.ID.String()
}

// UserPatch carries the profile fields a member may change. Nil fields are
// left untouched.
type UserPatch struct {
	DisplayName *string
	AvatarURL   *string
	Titles      []string
	Bio         *string
	CardTheme   *string
	Email       *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil && p.Titles == nil &&
		p.Bio == nil && p.CardTheme == nil && p.Email == nil
}

// UserQuery describes one page of the member directory.
type UserQuery struct {
	Search string
	Page   int
	Limit  int
}

// Offset returns the number of records to skip for the page.
func (q UserQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// UserRepository defines the contract for user data storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAnyAdmin(ctx context.Context) (*User, error)
	// List returns one page of users, newest first, and the total match count.
	List(ctx context.Context, q UserQuery) ([]*User, int64, error)
	Update(ctx context.Context, id string, patch UserPatch) (*User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// Pagination constants for the member directory.
const (
	DefaultPage     = 1
	DefaultPageSize = 9
	MaxPageSize     = 50
)
