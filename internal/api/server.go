// Package api exposes pattern detection over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cupscan/internal/analysis/patterns"
	"cupscan/internal/config"
	"cupscan/internal/logging"
	"cupscan/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	store      store.PriceStore
	detector   *patterns.Detector
	logger     zerolog.Logger
	cfg        config.ServerConfig
}

// NewServer creates an API server around the given store and detector.
func NewServer(cfg config.ServerConfig, st store.PriceStore, detector *patterns.Detector, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.CORSEnabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		router.Use(cors.New(corsConfig))
	}

	server := &Server{
		router:   router,
		store:    st,
		detector: detector,
		logger:   logging.WithComponent(logger, "api"),
		cfg:      cfg,
	}

	router.Use(server.requestLogger())
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.POST("/check_pattern", s.handleCheckPattern)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/symbols", s.handleSymbols)
}

// requestLogger records method, path, status and latency for each request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.LogRequest(s.logger, c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}

// Handler exposes the route tree for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
