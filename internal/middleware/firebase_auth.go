package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies Firebase ID tokens and sets the Firebase UID
// as the request principal.
func FirebaseAuthMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				log.Ctx(ctx).Debug().Err(err).Msg("rejected firebase id token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set("firebaseToken", token)
			SetPrincipal(c, token.UID)
			return next(c)
		}
	}
}
