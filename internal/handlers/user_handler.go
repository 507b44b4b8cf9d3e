package handlers

import (
	"net/http"

	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/models"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterProfileRoutes registers user profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/users", h.Register, auth)
	g.GET("/users/:id", h.GetUser)
}

// Register creates the caller's profile, keyed by their principal id.
func (h *UserHandler) Register(c echo.Context) error {
	userID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}

	var req models.RegisterUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
