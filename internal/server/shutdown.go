package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// waitForShutdown fires once an interrupt or terminate signal is received.
func waitForShutdown() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return quit
}

// close releases background work and connections in dependency order.
func (s *Server) close(ctx context.Context) {
	if s.sweeper != nil {
		s.sweeper.Stop(ctx)
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			slog.Warn("Failed to close event bus", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("Failed to close redis", "error", err)
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(ctx); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}
}
