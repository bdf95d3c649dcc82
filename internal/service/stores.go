// Package service implements the booking domain on top of abstract
// stores. The MySQL repositories and the in-memory stores both satisfy the
// interfaces declared here.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/queue"
)

type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	Update(ctx context.Context, u model.User) error
}

type TeeTimeStore interface {
	ListAvailable(ctx context.Context, course string, holes model.Holes, from time.Time) ([]model.TeeTime, error)
	GetByID(ctx context.Context, id string) (model.TeeTime, error)
	Count(ctx context.Context) (int, error)
	CreateMany(ctx context.Context, slots []model.TeeTime) error
}

// BookingStore must implement Book atomically: either the slot is flipped
// to unavailable and the booking recorded, or nothing changes.
type BookingStore interface {
	Book(ctx context.Context, b model.Booking) (model.TeeTime, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error)
	GetByID(ctx context.Context, id string) (model.BookingDetail, error)
}

// TokenRevoker remembers logged-out token IDs until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EventPublisher delivers booking events to downstream consumers.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// CacheInvalidator drops cached tee-time listings.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}
