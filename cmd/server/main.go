package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/nfrund/goonies/internal/config"
	"github.com/nfrund/goonies/internal/logging"
	"github.com/nfrund/goonies/internal/server"
)

func main() {
	cfg := config.New()
	logging.New()

	s, err := server.New(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
	if err := s.Start(cfg.GetAppAddr()); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}
