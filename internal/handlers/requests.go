package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator sharing the domain rules.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: domain.Validator()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// credentialsRequest is the body of register and login.
type credentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type forgotPasswordRequest struct {
	Username string `json:"username" form:"username"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

type allowRequest struct {
	Username string `json:"username" form:"username"`
}

// profileRequest is the body of PATCH /users/me. Titles arrive as a JSON
// array, a JSON-encoded string or a comma separated list.
type profileRequest struct {
	DisplayName string          `json:"displayName" form:"displayName" validate:"max=60"`
	AvatarURL   string          `json:"avatarUrl" form:"avatarUrl" validate:"omitempty,safeurl"`
	Bio         string          `json:"bio" form:"bio" validate:"max=1000"`
	CardTheme   string          `json:"cardTheme" form:"cardTheme"`
	Email       string          `json:"email" form:"email" validate:"omitempty,email"`
	Titles      json.RawMessage `json:"titles"`
}

type galleryRequest struct {
	URL     string `json:"url" form:"url"`
	Caption string `json:"caption" form:"caption"`
}

type eventRequest struct {
	Title         string      `json:"title" form:"title"`
	Description   string      `json:"description" form:"description"`
	ImageURL      string      `json:"imageUrl" form:"imageUrl"`
	StartAt       string      `json:"startAt" form:"startAt"`
	DurationHours json.Number `json:"durationHours" form:"durationHours"`
}

// bind decodes JSON, urlencoded or multipart bodies into dst.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

var errFileTooLarge = errors.New("file too large")

// formFile opens the optional multipart "file" field. It returns a nil
// reader when the request has no file.
func formFile(c echo.Context, maxBytes int64) (multipart.File, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file field: %w", err)
	}
	if fh.Size > maxBytes {
		return nil, errFileTooLarge
	}
	return fh.Open()
}

// parseTitles normalizes the accepted titles encodings. ok is false when the
// field was not provided.
func parseTitles(raw json.RawMessage, form []string) (titles []string, ok bool) {
	if len(raw) > 0 && string(raw) != "null" {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			return cleanTitles(list), true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return parseTitleString(s), true
		}
		return nil, false
	}
	switch len(form) {
	case 0:
		return nil, false
	case 1:
		return parseTitleString(form[0]), true
	default:
		return cleanTitles(form), true
	}
}

func parseTitleString(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return cleanTitles(list)
	}
	return cleanTitles(strings.Split(s, ","))
}

func cleanTitles(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
