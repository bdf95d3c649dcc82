package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/service"
)

type TeeTimeHandler struct {
	TeeTimes *service.TeeTimeService
}

func NewTeeTimeHandler(s *service.TeeTimeService) *TeeTimeHandler {
	return &TeeTimeHandler{TeeTimes: s}
}

// List handles GET /api/tee-times/:course/:holes. Course names arrive
// URL-encoded ("Pine%20Valley") and reach the service unescaped.
func (h *TeeTimeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	slots, err := h.TeeTimes.ListAvailable(ctx, c.Param("course"), c.Param("holes"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "teeTimeSlots": slots})
}
