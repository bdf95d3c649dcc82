// Package queue defines message payloads exchanged over the message broker
// along with the RabbitMQ publisher and consumer that carry them.
package queue

import (
	"time"

	"github.com/iliyamo/golf-tee-booking/internal/model"
)

// BookingConfirmedEvent is published once a booking has committed. It
// carries enough context for consumers to log or notify without reading
// the primary database.
type BookingConfirmedEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	TeeTimeID   string `json:"tee_time_id"`
	Course      string `json:"course"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Holes       string `json:"holes"`
	Players     int    `json:"players"`
	ConfirmedAt string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for a committed booking.
func NewBookingConfirmedEvent(d model.BookingDetail, at time.Time) BookingConfirmedEvent {
	ev := BookingConfirmedEvent{
		BookingID:   d.ID,
		UserID:      d.UserID,
		TeeTimeID:   d.TeeTimeID,
		Course:      d.TeeTime.Course,
		Date:        d.TeeTime.Date.Format(model.DateLayout),
		Time:        d.TeeTime.Time,
		Holes:       string(d.TeeTime.Holes),
		Players:     d.Players,
		ConfirmedAt: at.UTC().Format(time.RFC3339),
	}
	if d.User != nil {
		ev.UserName = d.User.Name
		ev.UserEmail = d.User.Email
	}
	return ev
}
