package model

import "time"

// Player count bounds for a single booking.
const (
	MinPlayers = 1
	MaxPlayers = 4
)

// Booking mirrors a row of the `bookings` table. Bookings are immutable
// once created.
type Booking struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	TeeTimeID string    `db:"tee_time_id" json:"teeTimeId"`
	Players   int       `db:"players" json:"players"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// BookingDetail is a booking enriched with its tee time and the booking
// user's public fields.
type BookingDetail struct {
	Booking
	TeeTime TeeTime      `json:"teeTime"`
	User    *UserSummary `json:"user,omitempty"`
}
