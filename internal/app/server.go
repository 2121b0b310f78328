// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"flipradar_backend/internal/config"
	"flipradar_backend/internal/jobs"
	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	listingHandler *listing.Handler

	// Jobs
	scheduler *jobs.Scheduler
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	listingHandler *listing.Handler,
	scheduler *jobs.Scheduler,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	// CORS Middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// --- Setup Routes ---
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	v1 := router.Group("/api/v1")
	listingHandler.RegisterRoutes(v1)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:     httpServer,
		router:         router,
		cfg:            cfg,
		logger:         logger,
		listingHandler: listingHandler,
		scheduler:      scheduler,
	}, nil
}

func (s *Server) Start() error {
	if s.scheduler != nil {
		if err := s.scheduler.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start job scheduler", zap.Error(err))
		}
	} else {
		s.logger.Info("Job scheduler is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped gracefully or an error occurred")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
