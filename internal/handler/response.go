// Package handler exposes the booking services over HTTP. Every JSON
// response carries "success"; failures add a human-readable "message".
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

func failure(msg string) echo.Map {
	return echo.Map{"success": false, "message": msg}
}

// fail renders err with the status of its kind. Internal causes are logged
// and never shown to the client.
func fail(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logging.FromContext(c.Request().Context()).Error().Err(err).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}
	return c.JSON(apperr.HTTPStatus(kind), failure(apperr.PublicMessage(err)))
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, failure(msg))
}

// ErrorHandler renders errors that escape handlers, including echo's own
// routing and body-limit errors, in the JSON envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		if ferr := fail(c, err); ferr != nil {
			c.Logger().Error(ferr)
		}
		return
	}

	var body echo.Map
	switch he.Code {
	case http.StatusNotFound:
		body = echo.Map{"success": false, "message": "Route not found", "path": c.Request().URL.Path}
	case http.StatusMethodNotAllowed:
		body = failure("Method not allowed")
	case http.StatusRequestEntityTooLarge:
		body = failure("Request body too large")
	default:
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error().Err(err).Msg("request failed")
			msg = "Internal server error"
		}
		body = failure(msg)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		c.Logger().Error(fmt.Errorf("write error response: %w", err))
	}
}
