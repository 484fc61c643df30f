// Package server exposes identify, deep search, search and history over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
)

// Searcher runs the identification pipelines.
type Searcher interface {
	Identify(ctx context.Context, req profile.IdentifyRequest) (*profile.IdentifyResult, error)
	DeepSearch(ctx context.Context, req profile.DeepSearchRequest) (*profile.DeepSearchResult, error)
	Search(ctx context.Context, query string, mode webfilter.Mode) ([]profile.Item, error)
}

// Store keeps search history and form submissions.
type Store interface {
	ListHistory(ctx context.Context) ([]profile.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
	SaveFormInfo(ctx context.Context, f profile.FormInfo) (profile.FormInfo, error)
}

// errNoStore is returned by the history routes when no store is configured.
var errNoStore = errors.New("storage not configured")

// Server is the sleuth HTTP API.
type Server struct {
	searcher Searcher
	store    Store
	logger   *slog.Logger
	router   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStore enables the history and form info routes.
func WithStore(st Store) Option {
	return func(s *Server) { s.store = st }
}

// New creates a Server.
func New(searcher Searcher, opts ...Option) *Server {
	s := &Server{searcher: searcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/identify", s.handleIdentify)
		api.POST("/deep", s.handleDeep)
		api.GET("/search", s.handleSearch)
		api.GET("/history", s.handleListHistory)
		api.DELETE("/history/:id", s.handleDeleteHistory)
		api.POST("/forminfo", s.handleFormInfo)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP())
	}
}
