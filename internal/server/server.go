package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/goonies/internal/auth"
	"github.com/nfrund/goonies/internal/card"
	"github.com/nfrund/goonies/internal/cloudinary"
	"github.com/nfrund/goonies/internal/config"
	"github.com/nfrund/goonies/internal/database"
	"github.com/nfrund/goonies/internal/email"
	"github.com/nfrund/goonies/internal/metrics"
	"github.com/nfrund/goonies/internal/middleware"
	"github.com/nfrund/goonies/internal/notify"
	"github.com/nfrund/goonies/internal/pubsub"
	"github.com/nfrund/goonies/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const (
	sessionMaxAge = 7 * 24 * 60 * 60
	sweepLockTTL  = 50 * time.Second
)

// Server holds the HTTP server and the resources it must release on shutdown.
type Server struct {
	E       *echo.Echo
	Cfg     config.Provider
	conn    *database.Connection
	redis   redis.UniversalClient
	bus     *pubsub.WatermillBridge
	sweeper *database.Sweeper
	cancel  context.CancelFunc
}

// New connects every backing service and wires the API.
func New(ctx context.Context, cfg config.Provider) (*Server, error) {
	conn, stores, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	conn.StartMonitoring()

	s := &Server{Cfg: cfg, conn: conn}
	ok := false
	defer func() {
		if !ok {
			s.close(context.WithoutCancel(ctx))
		}
	}()

	if s.redis, err = database.OpenRedis(ctx, cfg.GetRedisURL()); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cardStats := metrics.NewCard(reg)

	cld, err := cloudinary.New(cfg.GetCloudinary())
	if err != nil && !errors.Is(err, cloudinary.ErrNotConfigured) {
		return nil, err
	}
	var lookup cloudinary.VersionLookup
	if cld != nil {
		lookup = cld
		if s.redis != nil {
			lookup = cloudinary.NewCachedVersions(cld, s.redis, cfg.GetCardVersionCacheTTL())
		}
	} else {
		slog.Warn("Cloudinary credentials missing, card templates render without versions")
	}
	if cfg.GetCloudinary().CloudName == "" {
		slog.Warn("CLOUDINARY_CLOUD_NAME is not set, card routes will answer 500")
	}
	themes := card.NewThemeResolver(lookup, cfg.GetCardVersionTimeout(), cardStats)
	compositor := card.New(cfg.GetCloudinary().CloudName, themes)

	images, files, err := storage.NewImages(cfg, cld)
	if err != nil {
		return nil, err
	}

	sender, err := email.NewEmailService(cfg)
	if err != nil {
		return nil, fmt.Errorf("init email: %w", err)
	}

	s.bus = pubsub.NewWatermillBridge()
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	if err := notify.NewResetMailer(sender, cfg.GetAppBaseURL()).Subscribe(subCtx, s.bus); err != nil {
		return nil, fmt.Errorf("subscribe reset mailer: %w", err)
	}

	var sweepOpts []database.SweeperOption
	if s.redis != nil {
		sweepOpts = append(sweepOpts, database.WithLock(database.NewRedisLock(s.redis, "goonies:sweep", sweepLockTTL)))
	}
	s.sweeper = database.NewSweeper(stores.Events, stores.Resets, sweepOpts...)
	if err := s.sweeper.Start(cfg.GetSweepSchedule()); err != nil {
		return nil, err
	}

	deps := Dependencies{
		Users:       stores.Users,
		Allow:       stores.Allow,
		Gallery:     stores.Gallery,
		Events:      stores.Events,
		Resets:      stores.Resets,
		Tokens:      auth.NewTokens(cfg.GetJWTSecret(), cfg.GetJWTTTL()),
		Sessions:    middleware.NewSessionStore(cfg.GetSessionSecret(), cfg.GetAppEnv() == "production", sessionMaxAge),
		Publisher:   s.bus,
		Images:      images,
		Compositor:  compositor,
		CardStats:   cardStats,
		Registry:    reg,
		CORSOrigins: cfg.GetCORSOrigins(),
	}
	if files != nil {
		deps.Files = files
	}
	s.E = NewEcho(deps)

	ok = true
	return s, nil
}
