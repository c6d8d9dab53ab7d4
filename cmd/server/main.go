// Command server runs the Tukano API: user accounts, shorts, follows, likes
// and blob transfer over a SQLite system-of-record with a cache in front.
//
// Configuration comes from TUKANO_-prefixed environment variables; see
// internal/config for the full list. TUKANO_TOKEN_SECRET is the only
// required setting.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/afonsoproenca/tukano/internal/config"
	"github.com/afonsoproenca/tukano/internal/server"
)

func main() {
	cfg, err := config.Load(config.NewViper())
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DatabasePath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
