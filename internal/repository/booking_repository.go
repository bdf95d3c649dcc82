package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/golf-tee-booking/internal/database"
	"github.com/iliyamo/golf-tee-booking/internal/model"
)

// BookingRepo records bookings and owns the availability flip of the
// booked slot.
type BookingRepo struct{ DB *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Book atomically marks the slot b.TeeTimeID unavailable and inserts b.
// The slot row is locked for the duration of the transaction, so of two
// concurrent calls for one slot exactly one succeeds and the other gets
// ErrSlotUnavailable. The returned tee time reflects the committed state.
func (r *BookingRepo) Book(ctx context.Context, b model.Booking) (model.TeeTime, error) {
	var slot model.TeeTime
	err := database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &slot,
			"SELECT "+teeTimeColumns+" FROM tee_times WHERE id = ? FOR UPDATE", b.TeeTimeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if !slot.Available {
			return ErrSlotUnavailable
		}

		now := b.CreatedAt
		res, err := tx.ExecContext(ctx,
			"UPDATE tee_times SET available = FALSE, updated_at = ? WHERE id = ? AND available = TRUE",
			now, b.TeeTimeID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return ErrSlotUnavailable
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bookings (id, user_id, tee_time_id, players, created_at) VALUES (?, ?, ?, ?, ?)",
			b.ID, b.UserID, b.TeeTimeID, b.Players, b.CreatedAt); err != nil {
			if _, dup := duplicateKey(err); dup {
				return ErrSlotUnavailable
			}
			return err
		}
		slot.Available = false
		slot.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.TeeTime{}, err
	}
	return slot, nil
}

// bookingRow is the flat shape of a bookings row joined with its tee time.
type bookingRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TeeTimeID string    `db:"tee_time_id"`
	Players   int       `db:"players"`
	CreatedAt time.Time `db:"created_at"`

	TCourse    string      `db:"t_course"`
	TDate      time.Time   `db:"t_date"`
	TTime      string      `db:"t_time"`
	THoles     model.Holes `db:"t_holes"`
	TAvailable bool        `db:"t_available"`
	TCreatedAt time.Time   `db:"t_created_at"`
	TUpdatedAt time.Time   `db:"t_updated_at"`
}

func (r bookingRow) detail() model.BookingDetail {
	return model.BookingDetail{
		Booking: model.Booking{
			ID:        r.ID,
			UserID:    r.UserID,
			TeeTimeID: r.TeeTimeID,
			Players:   r.Players,
			CreatedAt: r.CreatedAt,
		},
		TeeTime: model.TeeTime{
			ID:        r.TeeTimeID,
			Course:    r.TCourse,
			Date:      r.TDate,
			Time:      r.TTime,
			Holes:     r.THoles,
			Available: r.TAvailable,
			CreatedAt: r.TCreatedAt,
			UpdatedAt: r.TUpdatedAt,
		},
	}
}

const bookingSelect = `SELECT b.id, b.user_id, b.tee_time_id, b.players, b.created_at,
	t.course AS t_course, t.date AS t_date, t.time AS t_time, t.holes AS t_holes,
	t.available AS t_available, t.created_at AS t_created_at, t.updated_at AS t_updated_at
	FROM bookings b
	JOIN tee_times t ON t.id = b.tee_time_id`

// ListByUser returns the user's bookings with their tee times, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	var rows []bookingRow
	if err := r.DB.SelectContext(ctx, &rows,
		bookingSelect+" WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC", userID); err != nil {
		return nil, err
	}
	out := make([]model.BookingDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.detail())
	}
	return out, nil
}

// GetByID returns a single booking with its tee time.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.BookingDetail, error) {
	var row bookingRow
	if err := r.DB.GetContext(ctx, &row, bookingSelect+" WHERE b.id = ? LIMIT 1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BookingDetail{}, ErrNotFound
		}
		return model.BookingDetail{}, err
	}
	return row.detail(), nil
}
