package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/middleware"
	"github.com/iliyamo/golf-tee-booking/internal/service"
)

type BookingHandler struct {
	Bookings *service.BookingManager
}

func NewBookingHandler(m *service.BookingManager) *BookingHandler {
	return &BookingHandler{Bookings: m}
}

type createBookingReq struct {
	TeeTimeID string `json:"teeTimeId"`
	Players   int    `json:"players"`
}

// Create handles POST /api/bookings for the authenticated user.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.CreateBooking(ctx, middleware.UserID(c), req.TeeTimeID, req.Players)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Booking created successfully",
		"booking": b,
	})
}

// Mine handles GET /api/my-bookings.
func (h *BookingHandler) Mine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Bookings.ListMyBookings(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bookings": list})
}

// Get handles GET /api/bookings/:id. Only the owner can see a booking.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, middleware.UserID(c), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "booking": b})
}
