package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/queue"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
)

const (
	msgTeeTimeNotFound    = "Tee time not found"
	msgTeeTimeUnavailable = "Tee time not available"
	msgBookingFailed      = "Failed to create booking"
	publishTimeout        = 3 * time.Second
)

// BookingManager creates bookings. The availability flip and the booking
// insert happen in one atomic store call; the reads before it only give
// precise errors and never stand in for the store's own check.
type BookingManager struct {
	users    UserStore
	teeTimes TeeTimeStore
	bookings BookingStore
	events   EventPublisher
	cache    CacheInvalidator
	now      func() time.Time
}

// NewBookingManager wires the manager. events and cache may be nil.
func NewBookingManager(users UserStore, teeTimes TeeTimeStore, bookings BookingStore, events EventPublisher, cache CacheInvalidator) *BookingManager {
	return &BookingManager{
		users:    users,
		teeTimes: teeTimes,
		bookings: bookings,
		events:   events,
		cache:    cache,
		now:      time.Now,
	}
}

// CreateBooking books teeTimeID for userID. Players is validated before
// any store is touched. Preconditions are checked in order: user exists,
// tee time exists, tee time is available.
func (m *BookingManager) CreateBooking(ctx context.Context, userID, teeTimeID string, players int) (model.BookingDetail, error) {
	teeTimeID = strings.TrimSpace(teeTimeID)
	if teeTimeID == "" {
		return model.BookingDetail{}, apperr.Validation("Tee time ID is required")
	}
	if players < model.MinPlayers || players > model.MaxPlayers {
		return model.BookingDetail{}, apperr.Validation("Players must be between 1 and 4")
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BookingDetail{}, apperr.NotFound("User not found")
		}
		return model.BookingDetail{}, apperr.Internal(msgBookingFailed, err)
	}

	slot, err := m.teeTimes.GetByID(ctx, teeTimeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BookingDetail{}, apperr.NotFound(msgTeeTimeNotFound)
		}
		return model.BookingDetail{}, apperr.Internal(msgBookingFailed, err)
	}
	if !slot.Available {
		return model.BookingDetail{}, apperr.Conflict(msgTeeTimeUnavailable)
	}

	b := model.Booking{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TeeTimeID: slot.ID,
		Players:   players,
		CreatedAt: m.now().UTC().Truncate(time.Second),
	}
	booked, err := m.bookings.Book(ctx, b)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotUnavailable):
			return model.BookingDetail{}, apperr.Conflict(msgTeeTimeUnavailable)
		case errors.Is(err, repository.ErrNotFound):
			return model.BookingDetail{}, apperr.NotFound(msgTeeTimeNotFound)
		}
		return model.BookingDetail{}, apperr.Internal(msgBookingFailed, err)
	}

	summary := user.Summary()
	detail := model.BookingDetail{Booking: b, TeeTime: booked, User: &summary}
	m.afterCommit(ctx, detail)
	return detail, nil
}

// afterCommit runs the side effects of a committed booking. Failures are
// logged only: the booking itself already stands.
func (m *BookingManager) afterCommit(ctx context.Context, d model.BookingDetail) {
	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContext(ctx)
	if m.cache != nil {
		if err := m.cache.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Str("booking_id", d.ID).Msg("tee-time cache invalidation failed")
		}
	}
	if m.events != nil {
		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := m.events.PublishBookingConfirmed(pctx, queue.NewBookingConfirmedEvent(d, m.now())); err != nil {
			logger.Warn().Err(err).Str("booking_id", d.ID).Msg("publish booking.confirmed failed")
		}
	}
}

// ListMyBookings returns the user's bookings, newest first.
func (m *BookingManager) ListMyBookings(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	out, err := m.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch bookings", err)
	}
	if out == nil {
		out = []model.BookingDetail{}
	}
	return out, nil
}

// GetBooking returns one of the user's bookings. Bookings of other users
// are reported as missing.
func (m *BookingManager) GetBooking(ctx context.Context, userID, bookingID string) (model.BookingDetail, error) {
	d, err := m.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.BookingDetail{}, apperr.NotFound("Booking not found")
		}
		return model.BookingDetail{}, apperr.Internal("Failed to fetch booking", err)
	}
	if d.UserID != userID {
		return model.BookingDetail{}, apperr.NotFound("Booking not found")
	}
	return d, nil
}
