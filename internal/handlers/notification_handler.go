package handlers

import (
	"net/http"

	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes. Both require a principal.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/notifications", h.CreateNotification, auth)
	g.GET("/notifications", h.GetNotifications, auth)
}

// CreateNotification records a notification sent by the caller.
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	senderID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notifications.Create(c.Request().Context(), senderID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// GetNotifications lists the caller's newest notifications with senders inlined.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	receiverID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	list, err := h.notifications.ListForReceiver(c.Request().Context(), receiverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
