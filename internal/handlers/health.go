package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness plus the reachability of each named dependency.
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	results := make([]string, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			if err := h.checks[name](ctx); err != nil {
				results[i] = "down"
				return err
			}
			results[i] = "up"
			return nil
		})
	}
	err := g.Wait()

	deps := make(map[string]string, len(names))
	for i, name := range names {
		deps[name] = results[i]
	}

	status, code := "healthy", http.StatusOK
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, echo.Map{
		"status":       status,
		"service":      "socialhub",
		"dependencies": deps,
	})
}
