package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/socialhub/backend/internal/handlers"
	"github.com/anonto42/socialhub/backend/internal/metrics"
	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/router"
	"github.com/anonto42/socialhub/backend/pkg/config"
	"github.com/anonto42/socialhub/backend/pkg/firebase"
	"github.com/anonto42/socialhub/backend/pkg/logger"
	"github.com/anonto42/socialhub/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Setup(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB()

	// Firebase is optional; without it requests authenticate with JWTs.
	var verifier middleware.TokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		verifier = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
	default:
		log.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg)
	if err := router.SetupRoutes(ctx, e, db, cfg, router.Authenticator(cfg, verifier)); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("HTTP server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.MetricsPort).Msg("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("Shutting down")
		return errors.Join(e.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
	}
}
