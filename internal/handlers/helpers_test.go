package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/auth"
	"github.com/nfrund/goonies/internal/card"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/testutils"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	e       *echo.Echo
	users   *testutils.MemoryUsers
	allow   *testutils.MemoryAllow
	gallery *testutils.MemoryGallery
	events  *testutils.MemoryEvents
	resets  *testutils.MemoryResets
	images  *testutils.FakeImages
	bus     *testutils.RecordingPublisher
	tokens  *auth.Tokens

	authHandler  *AuthHandler
	eventHandler *EventHandler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		e:       echo.New(),
		users:   testutils.NewMemoryUsers(),
		allow:   testutils.NewMemoryAllow(),
		gallery: testutils.NewMemoryGallery(),
		events:  testutils.NewMemoryEvents(),
		resets:  testutils.NewMemoryResets(),
		images:  &testutils.FakeImages{},
		bus:     &testutils.RecordingPublisher{},
		tokens:  auth.NewTokens("test-secret", time.Hour),
	}
	e := api.e
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Use(middleware.Session(middleware.NewSessionStore("session-secret", false, 3600)))
	e.Use(middleware.Authenticate(api.tokens))

	api.authHandler = NewAuthHandler(api.users, api.allow, api.resets, api.tokens, api.bus)
	a := e.Group("/auth")
	a.POST("/seed-admin", api.authHandler.SeedAdmin)
	a.POST("/register", api.authHandler.Register)
	a.POST("/login", api.authHandler.Login)
	a.POST("/logout", api.authHandler.Logout)
	a.POST("/forgot-password", api.authHandler.ForgotPassword)
	a.POST("/reset-password", api.authHandler.ResetPassword)

	allowHandler := NewAllowHandler(api.allow)
	al := e.Group("/allow", middleware.RequireAdmin)
	al.GET("", allowHandler.List)
	al.POST("", allowHandler.Add)
	al.DELETE("/:username", allowHandler.Remove)

	userHandler := NewUserHandler(api.users, api.images)
	u := e.Group("/users")
	u.GET("", userHandler.List)
	u.GET("/me", userHandler.Me, middleware.RequireAuth)
	u.PATCH("/me", userHandler.UpdateMe, middleware.RequireAuth)
	u.DELETE("/:id", userHandler.Delete, middleware.RequireAdmin)

	galleryHandler := NewGalleryHandler(api.gallery, api.images)
	g := e.Group("/gallery")
	g.GET("", galleryHandler.List)
	g.POST("", galleryHandler.Create, middleware.RequireAuth)
	g.DELETE("/:id", galleryHandler.Delete, middleware.RequireAuth)

	api.eventHandler = NewEventHandler(api.events, api.images)
	ev := e.Group("/events")
	ev.GET("", api.eventHandler.List)
	ev.GET("/active", api.eventHandler.Active)
	ev.POST("", api.eventHandler.Create, middleware.RequireAuth)
	ev.DELETE("/:id", api.eventHandler.Delete, middleware.RequireAuth)

	compositor := card.New("demo", card.NewThemeResolver(nil, time.Second, nil))
	cardHandler := NewCardHandler(api.users, compositor, api.images, nil)
	c := e.Group("/cards")
	c.POST("/preview-upload", cardHandler.PreviewUpload)
	c.GET("/preview.png", cardHandler.Preview)
	c.GET("/:file", cardHandler.Profile)
	return api
}

// member creates a user and returns it with a bearer token.
func (api *testAPI) member(t *testing.T, username string, role domain.Role) (*domain.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u, err := api.users.Create(context.Background(), &domain.User{Username: username, DisplayName: username, PasswordHash: hash, Role: role})
	require.NoError(t, err)
	token, err := api.tokens.Issue(u)
	require.NoError(t, err)
	return u, token
}

type request struct {
	method string
	path   string
	token  string
	json   any
	body   io.Reader
	ctype  string
}

func (api *testAPI) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	body := r.body
	ctype := r.ctype
	if r.json != nil {
		data, err := json.Marshal(r.json)
		require.NoError(t, err)
		body = bytes.NewReader(data)
		ctype = echo.MIMEApplicationJSON
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if ctype != "" {
		req.Header.Set(echo.HeaderContentType, ctype)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	return rec
}

// multipartBody builds a form with the given fields and an optional file.
func multipartBody(t *testing.T, fields map[string][]string, file []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "photo.jpg")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, rec).Error
}

func jsonContains(t *testing.T, rec *httptest.ResponseRecorder, s string) {
	t.Helper()
	require.True(t, strings.Contains(rec.Body.String(), s), "body %s does not contain %s", rec.Body.String(), s)
}
