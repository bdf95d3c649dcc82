package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// UserID returns the authenticated user's id, or "" on public routes.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok {
		return s
	}
	return ""
}

// Claims returns the verified token claims stored by JWTAuth.
func Claims(c echo.Context) *utils.Claims {
	cl, _ := c.Get(ctxClaims).(*utils.Claims)
	return cl
}

// rateSubject identifies the caller for rate limiting; anonymous callers
// share the "anon" bucket per IP.
func rateSubject(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
