package handlers

import (
	"time"

	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges a mutation.
type OKResponse struct {
	OK bool `json:"ok"`
}

var okResponse = OKResponse{OK: true}

func recordString(id *surrealmodels.RecordID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func timeOf(t *surrealmodels.CustomDateTime) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// UserResponse is the public view of a user. It never carries the password
// hash.
type UserResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	AvatarURL   string      `json:"avatarUrl"`
	Titles      []string    `json:"titles"`
	Bio         string      `json:"bio"`
	CardTheme   string      `json:"cardTheme"`
	Email       string      `json:"email,omitempty"`
	Role        domain.Role `json:"role"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
}

// NewUserResponse maps a domain user onto its public view.
func NewUserResponse(u *domain.User) *UserResponse {
	titles := u.Titles
	if titles == nil {
		titles = []string{}
	}
	return &UserResponse{
		ID:          u.IDString(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Titles:      titles,
		Bio:         u.Bio,
		CardTheme:   u.CardTheme,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   timeOf(u.CreatedAt),
	}
}

// publicUser hides the email address from other members.
func publicUser(u *domain.User) *UserResponse {
	r := NewUserResponse(u)
	r.Email = ""
	return r
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// UserPage is one page of the member directory.
type UserPage struct {
	Items []*UserResponse `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int64           `json:"total"`
	Pages int             `json:"pages"`
}

// GalleryResponse is one gallery item.
type GalleryResponse struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Caption    string     `json:"caption"`
	UploadedBy string     `json:"uploadedBy"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

func NewGalleryResponse(g *domain.GalleryItem) *GalleryResponse {
	return &GalleryResponse{
		ID:         recordString(g.ID),
		URL:        g.URL,
		Caption:    g.Caption,
		UploadedBy: recordString(g.UploadedBy),
		CreatedAt:  timeOf(g.CreatedAt),
	}
}

// EventResponse is one event.
type EventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func NewEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:          recordString(e.ID),
		Title:       e.Title,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		StartAt:     timeOf(e.StartAt),
		EndAt:       timeOf(e.EndAt),
		CreatedBy:   recordString(e.CreatedBy),
		CreatedAt:   timeOf(e.CreatedAt),
	}
}

func mapAll[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
