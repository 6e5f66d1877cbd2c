package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/auth"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/notify"
	"github.com/nfrund/goonies/internal/pubsub"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Seed admin credentials. They are meant to be changed right after setup.
const (
	seedAdminUsername    = "admin"
	seedAdminPassword    = "goonies-admin"
	seedAdminDisplayName = "Chef Goonies"
)

// Minimum credential lengths for registration.
const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	users     domain.UserRepository
	allow     domain.AllowRepository
	resets    domain.PasswordResetRepository
	tokens    *auth.Tokens
	publisher pubsub.Publisher
	now       func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, allow domain.AllowRepository, resets domain.PasswordResetRepository, tokens *auth.Tokens, publisher pubsub.Publisher) *AuthHandler {
	return &AuthHandler{
		users:     users,
		allow:     allow,
		resets:    resets,
		tokens:    tokens,
		publisher: publisher,
		now:       time.Now,
	}
}

// SeedAdmin creates the first admin account once (POST /auth/seed-admin).
func (h *AuthHandler) SeedAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.users.FindAnyAdmin(ctx); err == nil {
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "already": true})
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	admin, err := CreateSeedAdmin(ctx, h.users)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "admin": map[string]string{"id": admin.IDString()}})
}

// Register creates a member account for an allow-listed username
// (POST /auth/register).
func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	username := strings.TrimSpace(req.Username)

	switch {
	case username == "" || req.Password == "":
		return jsonError(c, http.StatusBadRequest, "Missing fields")
	case len([]rune(username)) < MinUsernameLen:
		return jsonError(c, http.StatusBadRequest, "Username too short (min 3)")
	case len([]rune(req.Password)) < MinPasswordLen:
		return jsonError(c, http.StatusBadRequest, "Password too short (min 6)")
	}

	allowed, err := h.allow.IsAllowed(ctx, username)
	if err != nil {
		logger.Error("Allow-list lookup failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Register failed")
	}
	if !allowed {
		return jsonError(c, http.StatusForbidden, "Username not allowed")
	}

	if _, err := h.users.FindByUsername(ctx, username); err == nil {
		return jsonError(c, http.StatusConflict, "Username taken")
	} else if !errors.Is(err, domain.ErrNotFound) {
		logger.Error("User lookup failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Register failed")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("Password hashing failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Register failed")
	}
	user, err := h.users.Create(ctx, &domain.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
		Role:         domain.RoleMember,
		Titles:       []string{},
	})
	if errors.Is(err, domain.ErrUserAlreadyExists) {
		return jsonError(c, http.StatusConflict, "Username taken")
	}
	if err != nil {
		logger.Error("User creation failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Register failed")
	}

	logger.Info("Member registered", slog.String("user_id", user.IDString()))
	return h.respondWithToken(c, user)
}

// Login verifies credentials (POST /auth/login). The token is returned and
// also stored in the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Username == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "Missing username or password")
	}

	user, err := h.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusUnauthorized, "Invalid creds")
	}
	if err != nil {
		logger.Error("User lookup failed", slog.String("error", err.Error()))
		return jsonError(c, http.StatusInternalServerError, "Login failed")
	}
	if user.PasswordHash == "" {
		logger.Error("User has no password hash", slog.String("user_id", user.IDString()))
		return jsonError(c, http.StatusInternalServerError, "Login failed")
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return jsonError(c, http.StatusUnauthorized, "Invalid creds")
	}
	return h.respondWithToken(c, user)
}

func (h *AuthHandler) respondWithToken(c echo.Context, user *domain.User) error {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	if err := middleware.SaveSessionToken(c, token); err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Failed to save session", slog.String("error", err.Error()))
	}
	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: NewUserResponse(user)})
}

// Logout clears the session cookie (POST /auth/logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := middleware.ClearSession(c); err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Failed to clear session", slog.String("error", err.Error()))
	}
	return c.JSON(http.StatusOK, okResponse)
}

// ForgotPassword issues a reset token (POST /auth/forgot-password). It
// always answers ok so usernames cannot be enumerated.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req forgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return c.JSON(http.StatusOK, okResponse)
	}

	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error("User lookup failed", slog.String("error", err.Error()))
		}
		return c.JSON(http.StatusOK, okResponse)
	}
	if user.Email == "" {
		logger.Info("Password reset requested for user without email", slog.String("user_id", user.IDString()))
		return c.JSON(http.StatusOK, okResponse)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		logger.Error("Reset token generation failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusOK, okResponse)
	}
	_, err = h.resets.Create(ctx, &domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: &surrealmodels.CustomDateTime{Time: h.now().Add(domain.ResetTokenTTL).UTC()},
	})
	if err != nil {
		logger.Error("Failed to store password reset", slog.String("error", err.Error()))
		return c.JSON(http.StatusOK, okResponse)
	}

	err = pubsub.Publish(ctx, h.publisher, notify.PasswordResetRequested, user.IDString(), domain.PasswordResetRequested{
		UserID:   user.IDString(),
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
	if err != nil {
		logger.Error("Failed to publish password reset", slog.String("error", err.Error()))
	}
	return c.JSON(http.StatusOK, okResponse)
}

// ResetPassword redeems a reset token (POST /auth/reset-password).
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	var req resetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return jsonError(c, http.StatusBadRequest, "Invalid or expired token")
	}
	if len([]rune(req.Password)) < MinPasswordLen {
		return jsonError(c, http.StatusBadRequest, "Password too short (min 6)")
	}

	reset, err := h.resets.FindByTokenHash(ctx, auth.HashResetToken(req.Token))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Reset lookup failed", slog.String("error", err.Error()))
		return err
	}
	if err != nil || !reset.Usable(h.now()) || reset.UserID == nil {
		return jsonError(c, http.StatusBadRequest, "Invalid or expired token")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := h.users.SetPassword(ctx, reset.UserID.String(), hash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return jsonError(c, http.StatusBadRequest, "Invalid or expired token")
		}
		return err
	}
	if err := h.resets.MarkUsed(ctx, reset.ID.String()); err != nil {
		logger.Error("Failed to mark reset used", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Password reset completed", slog.String("user_id", reset.UserID.String()))
	return c.JSON(http.StatusOK, okResponse)
}

// CreateSeedAdmin creates the default admin account. Callers check first
// that no admin exists.
func CreateSeedAdmin(ctx context.Context, users domain.UserRepository) (*domain.User, error) {
	hash, err := auth.HashPassword(seedAdminPassword)
	if err != nil {
		return nil, err
	}
	return users.Create(ctx, &domain.User{
		Username:     seedAdminUsername,
		DisplayName:  seedAdminDisplayName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Titles:       []string{},
	})
}
