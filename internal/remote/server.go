// Package remote serves an HTTP control surface over the playback engine.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/playback"
)

// Options configures the remote server.
type Options struct {
	Addr  string
	Debug bool
}

// Server represents the HTTP server
type Server struct {
	opts    Options
	service playback.Service
	router  *gin.Engine
	server  *http.Server
}

// New creates a server controlling service.
func New(service playback.Service, opts Options) *Server {
	s := &Server{opts: opts, service: service}
	s.setupRouter()
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
	return s
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(RequestID())
	s.router.Use(RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	SetupRoutes(&s.router.RouterGroup, s.service)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until the server
// stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	logger.Log.Info().Str("addr", s.opts.Addr).Msg("starting remote control server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("remote server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("remote server shutdown: %w", err)
	}
	logger.Log.Info().Msg("remote control server stopped")
	return nil
}
