package handlers

import (
	"net/http"

	"github.com/anonto42/socialhub/backend/internal/middleware"
	"github.com/anonto42/socialhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	users *services.UserService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(users *services.UserService) *FollowHandler {
	return &FollowHandler{users: users}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/users/:id/followings", h.GetFollowings)
	g.PUT("/users/:id/follow", h.FollowUser, auth)
	g.PUT("/users/:id/unfollow", h.UnfollowUser, auth)
}

// FollowUser makes the caller follow the user in the path
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.Follow(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User has been followed"})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := middleware.RequirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.Unfollow(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User has been unfollowed"})
}

func (h *FollowHandler) GetFollowings(c echo.Context) error {
	ids, err := h.users.Followings(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ids)
}
