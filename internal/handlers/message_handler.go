package handlers

import (
	"net/http"

	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// RegisterMessageRoutes registers message routes. Sending takes the sender from
// the body and needs no principal; reading a conversation does.
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/messages", h.SendMessage)
	g.GET("/messages/:recipientId", h.GetMessages, auth)
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.messages.Send(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetMessages returns the conversation between the caller and recipientId.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	convo, err := h.messages.Conversation(c.Request().Context(), userID, c.Param("recipientId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, convo)
}
