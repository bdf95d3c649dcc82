package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/utils"
)

// Authenticator verifies a raw bearer token and returns its claims.
// service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*utils.Claims, error)
}

// JWTAuth rejects requests without a valid, unrevoked Bearer token and
// stores the caller's id and claims on the echo context for handlers.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return unauthorized(c, "Access denied. No token provided.")
			}

			claims, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				if !apperr.Is(err, apperr.KindUnauthorized) {
					// revocation store failure: let the error handler log it
					return err
				}
				return unauthorized(c, apperr.PublicMessage(err))
			}

			c.Set(ctxUserID, claims.Subject)
			c.Set(ctxClaims, claims)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": msg})
}
