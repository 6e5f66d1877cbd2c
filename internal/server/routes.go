package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/goonies/internal/auth"
	"github.com/nfrund/goonies/internal/card"
	"github.com/nfrund/goonies/internal/domain"
	"github.com/nfrund/goonies/internal/handlers"
	"github.com/nfrund/goonies/internal/metrics"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/pubsub"
	"github.com/nfrund/goonies/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Body limits. JSON bodies are small; multipart uploads are checked per file
// by the handlers and only bounded loosely here.
const (
	jsonBodyLimit      = "5M"
	multipartBodyLimit = "13M"
)

// Dependencies holds everything the HTTP layer needs. New builds it from
// configuration; tests fill it with in-memory fakes.
type Dependencies struct {
	Users   domain.UserRepository
	Allow   domain.AllowRepository
	Gallery domain.GalleryRepository
	Events  domain.EventRepository
	Resets  domain.PasswordResetRepository

	Tokens     *auth.Tokens
	Sessions   sessions.Store
	Publisher  pubsub.Publisher
	Images     storage.Images
	Compositor *card.Compositor
	CardStats  *metrics.Card

	// Files, when set, is served under storage.LocalPrefix.
	Files storage.Store
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry

	CORSOrigins []string
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// NewEcho builds the API with its middleware chain and routes.
func NewEcho(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	e.Use(crossOriginResourcePolicy)
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     deps.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{Limit: jsonBodyLimit, Skipper: isMultipart}))
	e.Use(echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{
		Limit:   multipartBodyLimit,
		Skipper: func(c echo.Context) bool { return !isMultipart(c) },
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "goonies",
		Subsystem:  "http",
		Registerer: reg,
		Skipper:    func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))
	e.Use(middleware.GlobalRateLimiter())
	if deps.Sessions != nil {
		e.Use(middleware.Session(deps.Sessions))
	}
	e.Use(middleware.Authenticate(deps.Tokens))

	registerRoutes(e, deps, reg)
	return e
}

// crossOriginResourcePolicy lets the front end embed images served here.
func crossOriginResourcePolicy(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		return next(c)
	}
}

func registerRoutes(e *echo.Echo, deps Dependencies, reg *prometheus.Registry) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true, "name": "goonies-api"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	if deps.Files != nil {
		e.GET(storage.LocalPrefix+"/*", storage.NewFileHandler(deps.Files).Serve)
	}

	authLimiter := middleware.AuthRateLimiter()
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Allow, deps.Resets, deps.Tokens, deps.Publisher)
	a := e.Group("/auth")
	a.POST("/seed-admin", authHandler.SeedAdmin)
	a.POST("/register", authHandler.Register, authLimiter)
	a.POST("/login", authHandler.Login, authLimiter)
	a.POST("/logout", authHandler.Logout)
	a.POST("/forgot-password", authHandler.ForgotPassword)
	a.POST("/reset-password", authHandler.ResetPassword)

	allowHandler := handlers.NewAllowHandler(deps.Allow)
	al := e.Group("/allow", middleware.RequireAdmin)
	al.GET("", allowHandler.List)
	al.POST("", allowHandler.Add)
	al.DELETE("/:username", allowHandler.Remove)

	userHandler := handlers.NewUserHandler(deps.Users, deps.Images)
	u := e.Group("/users")
	u.GET("", userHandler.List)
	u.GET("/me", userHandler.Me, middleware.RequireAuth)
	u.PATCH("/me", userHandler.UpdateMe, middleware.RequireAuth)
	u.DELETE("/:id", userHandler.Delete, middleware.RequireAdmin)

	galleryHandler := handlers.NewGalleryHandler(deps.Gallery, deps.Images)
	g := e.Group("/gallery")
	g.GET("", galleryHandler.List)
	g.POST("", galleryHandler.Create, middleware.RequireAuth)
	g.DELETE("/:id", galleryHandler.Delete, middleware.RequireAuth)

	eventHandler := handlers.NewEventHandler(deps.Events, deps.Images)
	ev := e.Group("/events")
	ev.GET("", eventHandler.List)
	ev.GET("/active", eventHandler.Active)
	ev.POST("", eventHandler.Create, middleware.RequireAuth)
	ev.DELETE("/:id", eventHandler.Delete, middleware.RequireAuth)

	cardHandler := handlers.NewCardHandler(deps.Users, deps.Compositor, deps.Images, deps.CardStats)
	c := e.Group("/cards")
	c.POST("/preview-upload", cardHandler.PreviewUpload)
	c.GET("/preview.png", cardHandler.Preview)
	c.GET("/:file", cardHandler.Profile)
}
