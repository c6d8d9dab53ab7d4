// Package server is the composition root: it assembles the store, cache,
// blob store and token service into the service graph, mounts the routes and
// runs the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/afonsoproenca/tukano/internal/auth"
	"github.com/afonsoproenca/tukano/internal/blob"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/config"
	"github.com/afonsoproenca/tukano/internal/handler"
	"github.com/afonsoproenca/tukano/internal/middleware"
	sqliteRepo "github.com/afonsoproenca/tukano/internal/repository/sqlite"
	"github.com/afonsoproenca/tukano/internal/service"
)

// Server owns the long-lived resources (database, cache connection) and
// closes them on shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.AppConfig
	logger *slog.Logger

	db          *sqliteRepo.DB
	cacheCloser io.Closer // nil when the in-process cache is in use
}

// New wires the full dependency graph.
//
// The wiring order follows the service dependency graph bottom-up: gate,
// then blobs (the gate's peer at the leaf tier), then shorts, then the
// services that fan out from shorts. Each layer receives interfaces, never
// the concrete store, so tests can assemble the same graph over in-memory
// implementations.
func New(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Redis when configured, in-process otherwise. The cache contract is
	// identical either way; a missing Redis only costs cross-instance
	// sharing.
	var (
		dataCache   cache.Cache
		cacheCloser io.Closer
	)
	if cfg.RedisAddress != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisAddress, cfg.RedisPassword, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		dataCache = redisCache
		cacheCloser = redisCache
	} else {
		logger.Warn("no redis address configured, using the in-process cache")
		dataCache = cache.NewMemory()
	}

	blobStore, err := blob.NewFS(cfg.BlobDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening blob store: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.TokenSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	gate := service.NewAuthGate(db.Users(), dataCache, logger)
	blobs := service.NewBlobService(blobStore, db.Shorts(), gate, tokens, dataCache, logger)
	shorts := service.NewShortService(db.Shorts(), db.Follows(), db.Likes(), gate, blobs, tokens, dataCache, cfg.BlobBaseURL, logger)
	social := service.NewSocialService(db.Follows(), gate, dataCache, logger)
	engagement := service.NewEngagementService(db.Likes(), shorts, gate, dataCache, logger)
	users := service.NewUserService(db.Users(), dataCache, shorts, logger)

	s := &Server{
		router:      chi.NewRouter(),
		cfg:         cfg,
		logger:      logger,
		db:          db,
		cacheCloser: cacheCloser,
	}
	s.setupRoutes(
		handler.NewUserHandler(users, logger),
		handler.NewShortHandler(shorts, social, engagement, logger),
		handler.NewBlobHandler(blobs, logger),
	)
	return s, nil
}

func (s *Server) setupRoutes(users *handler.UserHandler, shorts *handler.ShortHandler, blobs *handler.BlobHandler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/rest", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.HandleCreate)
			r.Get("/", users.HandleSearch)
			r.Get("/{userId}", users.HandleGet)
			r.Put("/{userId}", users.HandleUpdate)
			r.Delete("/{userId}", users.HandleDelete)
		})

		r.Route("/shorts", func(r chi.Router) {
			r.Post("/{userId}", shorts.HandleCreate)
			r.Get("/{shortId}", shorts.HandleGet)
			r.Delete("/{shortId}", shorts.HandleDelete)
			r.Get("/{userId}/shorts", shorts.HandleListByOwner)
			r.Get("/{userId}/followers", shorts.HandleFollowers)
			r.Get("/{userId}/feed", shorts.HandleFeed)
			r.Get("/{shortId}/likes", shorts.HandleLikes)
			r.Post("/{followerId}/{followeeId}/followers", shorts.HandleFollow)
			r.Post("/{shortId}/{userId}/likes", shorts.HandleLike)
		})

		r.Route("/blobs", func(r chi.Router) {
			r.Post("/{blobId}", blobs.HandleUpload)
			r.Get("/{blobId}", blobs.HandleDownload)
			r.Delete("/{blobId}", blobs.HandleDelete)
			r.Delete("/{userId}/blobs", blobs.HandleDeleteAll)
		})
	})
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight requests
// and closes the database and cache connections.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         s.cfg.HTTPAddress,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("address", s.cfg.HTTPAddress),
			slog.String("database", s.cfg.DatabasePath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

func (s *Server) close() {
	if s.cacheCloser != nil {
		if err := s.cacheCloser.Close(); err != nil {
			s.logger.Warn("closing cache connection", slog.String("error", err.Error()))
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
