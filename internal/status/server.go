package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/article-worker/internal/worker"
)

// StatsSource reports the worker counters
type StatsSource interface {
	Stats() worker.Stats
}

// Config holds status server configuration
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Service         string
	Environment     string
}

// Server exposes worker health and counters over HTTP
type Server struct {
	config *Config
	logger *slog.Logger
	srv    *http.Server
}

// NewServer builds the status server. It does not listen until Start is called.
func NewServer(config *Config, source StatsSource, logger *slog.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      SetupRouter(config, source, logger),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
	}
}

// SetupRouter configures the gin engine with the status routes
func SetupRouter(config *Config, source StatsSource, logger *slog.Logger) *gin.Engine {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		stats := source.Stats()
		code := http.StatusOK
		health := "healthy"
		if stats.State == worker.StateAborted {
			code = http.StatusServiceUnavailable
			health = "unhealthy"
		}

		c.JSON(code, gin.H{
			"status":  health,
			"service": config.Service,
			"state":   stats.State,
		})
	})

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Stats())
	})

	return r
}

// Start listens in the background. A listen failure is returned immediately.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	s.logger.Info("Starting status server",
		slog.String("address", listener.Addr().String()),
	)

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server stopped unexpectedly",
				slog.Any("error", err),
			)
		}
	}()

	return nil
}

// Shutdown stops the server, waiting at most ShutdownTimeout for open requests
func (s *Server) Shutdown() error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("status server forced to shutdown: %w", err)
	}

	s.logger.Info("Status server shutdown complete")
	return nil
}
