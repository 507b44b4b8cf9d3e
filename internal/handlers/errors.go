package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind"`
}

// ErrorHandler renders service and echo errors as ErrorResponse.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		kind   apperrors.Kind
		msg    string
		ae     *apperrors.Error
		he     *echo.HTTPError
	)
	if !errors.As(err, &ae) && errors.As(err, &he) {
		status = he.Code
		kind = apperrors.KindFromStatus(he.Code)
		msg = fmt.Sprint(he.Message)
	} else {
		kind = apperrors.KindOf(err)
		status = kind.HTTPStatus()
		msg = apperrors.PublicMessage(err)
	}

	logger := log.Ctx(c.Request().Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("kind", string(kind)).Msg("request rejected")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Error: msg, Kind: kind})
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}

// bindAndValidate binds the request body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request payload", err)
	}
	return c.Validate(req)
}
