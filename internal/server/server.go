package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photolister/internal/config"
	"photolister/internal/handler"
	"photolister/internal/middleware"
	"photolister/internal/repository"
	"photolister/internal/service"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// The browser client is served from elsewhere and calls this API
	// cross-origin with the shared token header.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", middleware.TokenHeader},
		MaxAge:          12 * time.Hour,
	}))

	s3Repo, err := repository.NewS3Repository(&cfg.S3, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 repository: %w", err)
	}

	uploadService := service.NewUploadService(s3Repo, log)
	listingService := service.NewListingService(cfg.App.WebhookURL, log)

	h := handler.NewHandler(uploadService, listingService, cfg, log)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/", middleware.TokenRequired(cfg.App.AuthToken))
	{
		api.POST("/upload", h.UploadPhotos)
		api.POST("/create-listing", h.CreateListing)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
			// Uploads can carry up to 20 compressed photos per request.
			ReadTimeout:    2 * time.Minute,
			WriteTimeout:   2 * time.Minute,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
