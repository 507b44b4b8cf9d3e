package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated user id on the echo context and tags
// the request logger with it.
func SetPrincipal(c echo.Context, userID string) {
	c.Set(principalKey, userID)

	req := c.Request()
	ctx := req.Context()
	l := log.Ctx(ctx).With().Str("user_id", userID).Logger()
	c.SetRequest(req.WithContext(l.WithContext(ctx)))
}

// PrincipalID returns the authenticated user id, if any.
func PrincipalID(c echo.Context) (string, bool) {
	id, ok := c.Get(principalKey).(string)
	return id, ok && id != ""
}

// RequirePrincipal is PrincipalID for handlers behind an auth middleware.
func RequirePrincipal(c echo.Context) (string, error) {
	id, ok := PrincipalID(c)
	if !ok {
		return "", apperrors.New(apperrors.KindUnauthorized, "User not authenticated")
	}
	return id, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
	}
	return parts[1], nil
}
