package config

import (
	"github.com/anonto42/socialhub/backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *Config) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(contextLogger)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			var event *zerolog.Event
			switch {
			case v.Status >= 500:
				event = log.Ctx(c.Request().Context()).Error().Err(v.Error)
			case v.Status >= 400:
				event = log.Ctx(c.Request().Context()).Warn().Err(v.Error)
			default:
				event = log.Ctx(c.Request().Context()).Info()
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
}

// contextLogger attaches a logger carrying the request id to the request context.
func contextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		l := log.Logger.With().Str("request_id", rid).Logger()
		c.SetRequest(req.WithContext(l.WithContext(req.Context())))
		return next(c)
	}
}
