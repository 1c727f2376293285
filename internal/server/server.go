// Package server exposes render cycles and exports over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reformtrack/align/dataset"
	"github.com/reformtrack/align/export"
	"github.com/reformtrack/align/internal/config"
)

// Source provides the cached dataset.
type Source interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// Server is the align HTTP API.
type Server struct {
	cfg    *config.Config
	source Source
	png    *export.Capability
	logger *zap.Logger
	router *gin.Engine
}

// New builds the server and its routes. png may be nil when PNG export
// is not configured.
func New(cfg *config.Config, source Source, png *export.Capability, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if png == nil {
		png = export.Unavailable("not configured", export.InstallHint)
	}
	s := &Server{cfg: cfg, source: source, png: png, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.GET("/selection/default", s.handleDefaultSelection)
		api.POST("/controls", s.handleControls)
		api.POST("/render", s.handleRender)

		api.POST("/export/csv", s.handleExportCSV)
		api.POST("/export/svg", s.handleExportSVG)
		api.POST("/export/png", s.handleExportPNG)

		api.GET("/debug/preview", s.handlePreview)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("api server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-errCh
	s.logger.Info("server stopped")
	return nil
}
