package router

import (
	"context"
	"fmt"

	"github.com/anonto42/socialhub/backend/internal/handlers"
	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/repositories"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/anonto42/socialhub/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Authenticator picks the identity provider: Firebase ID tokens when a
// verifier is configured, HMAC JWTs otherwise.
func Authenticator(cfg *config.Config, verifier middleware.TokenVerifier) echo.MiddlewareFunc {
	if verifier != nil {
		log.Info().Msg("Using Firebase ID token authentication")
		return middleware.FirebaseAuthMiddleware(verifier)
	}
	log.Info().Msg("Using JWT authentication")
	return middleware.JWTAuthMiddleware(cfg.JWTSecret)
}

// SetupRoutes prepares the stores, then configures all application routes and
// injects dependencies
func SetupRoutes(ctx context.Context, e *echo.Echo, db *config.DB, cfg *config.Config, auth echo.MiddlewareFunc) error {
	if err := db.Postgres.WithContext(ctx).AutoMigrate(&models.User{}, &models.Follow{}); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	if err := repositories.EnsureMongoIndexes(ctx, db.MongoDB); err != nil {
		return fmt.Errorf("failed to create mongo indexes: %w", err)
	}
	log.Info().Msg("MongoDB indexes ensured")

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"postgres": db.PingPostgres,
		"mongo":    db.PingMongo,
	})
	e.GET("/health", health.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	postRepo := repositories.NewMongoContentRepository(db.MongoDB, models.KindPost)
	productRepo := repositories.NewMongoContentRepository(db.MongoDB, models.KindProduct)
	notificationRepo := repositories.NewMongoNotificationRepository(db.MongoDB)
	messageRepo := repositories.NewMongoMessageRepository(db.MongoDB)

	// --- Initialize Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo)
	postService := services.NewContentService(models.KindPost, postRepo, userRepo, notificationService, services.OwnerOnly)
	productService := services.NewContentService(models.KindProduct, productRepo, userRepo, notificationService, services.OwnerOnly)
	postFeed := services.NewFeedService(postRepo, userRepo, followRepo, cfg.FeedFanoutLimit)
	productFeed := services.NewFeedService(productRepo, userRepo, followRepo, cfg.FeedFanoutLimit)
	messageService := services.NewMessageService(messageRepo, notificationService)
	userService := services.NewUserService(userRepo, followRepo, notificationService)

	api := e.Group("/api/v1")

	handlers.NewUserHandler(userService).RegisterProfileRoutes(api, auth)
	handlers.NewFollowHandler(userService).RegisterFollowRoutes(api, auth)
	log.Debug().Msg("User routes configured")

	handlers.NewContentHandler(postService, postFeed).RegisterPostRoutes(api.Group("/posts"), auth)
	log.Debug().Msg("Post routes configured")

	handlers.NewContentHandler(productService, productFeed).RegisterProductRoutes(api.Group("/products"), auth)
	log.Debug().Msg("Product routes configured")

	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api, auth)
	log.Debug().Msg("Notification routes configured")

	handlers.NewMessageHandler(messageService).RegisterMessageRoutes(api, auth)
	log.Debug().Msg("Message routes configured")

	log.Info().Int("routes", len(e.Routes())).Msg("All routes configured")
	return nil
}
