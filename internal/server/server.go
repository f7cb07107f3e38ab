// Package server implements the dotwhisker rendering HTTP server.
//
// The server exposes the chart pipeline over HTTP: clients POST a tidy
// coefficient table plus assembly options and receive the rendered SVG
// or the serialized chart JSON. Rendering is deterministic, so
// responses are cached by content hash; a shared redis backend lets
// multiple instances serve from one artifact store.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plotkit/dotwhisker/pkg/cache"
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// RedisURL selects the redis artifact cache. Empty disables caching.
	RedisURL string

	// CacheScope prefixes cache keys, isolating deployments that share
	// one redis instance.
	CacheScope string

	// CacheTTL bounds artifact lifetime. Zero means one week.
	CacheTTL time.Duration

	// Logger reports request handling. Nil falls back to log.Default().
	Logger *log.Logger
}

// Server is the rendering HTTP server.
type Server struct {
	cfg    Config
	logger *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	http   *http.Server
}

// New creates a server, connecting to redis when configured.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 7 * 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	artifactCache := cache.NewNullCache()
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		artifactCache = c
		logger.Info("Connected to redis artifact cache")
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		cache:  artifactCache,
		keyer:  cache.NewScopedKeyer(nil, cfg.CacheScope),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// routes builds the router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/charts/{kind}", s.handleRender)
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.cache.Close()
}
