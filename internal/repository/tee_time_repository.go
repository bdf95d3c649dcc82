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

const teeTimeColumns = "id, course, date, time, holes, available, created_at, updated_at"

// insertBatch bounds the number of rows per multi-row INSERT.
const insertBatch = 500

// TeeTimeRepo reads and seeds the `tee_times` table.
type TeeTimeRepo struct{ DB *sqlx.DB }

func NewTeeTimeRepo(db *sqlx.DB) *TeeTimeRepo { return &TeeTimeRepo{DB: db} }

// ListAvailable returns open slots for course/holes dated on or after
// from, ordered by date then time.
func (r *TeeTimeRepo) ListAvailable(ctx context.Context, course string, holes model.Holes, from time.Time) ([]model.TeeTime, error) {
	out := []model.TeeTime{}
	err := r.DB.SelectContext(ctx, &out,
		"SELECT "+teeTimeColumns+` FROM tee_times
		 WHERE course = ? AND holes = ? AND available = TRUE AND date >= ?
		 ORDER BY date ASC, time ASC`,
		course, holes, from.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single slot.
func (r *TeeTimeRepo) GetByID(ctx context.Context, id string) (model.TeeTime, error) {
	var t model.TeeTime
	err := r.DB.GetContext(ctx, &t, "SELECT "+teeTimeColumns+" FROM tee_times WHERE id = ? LIMIT 1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TeeTime{}, ErrNotFound
		}
		return model.TeeTime{}, err
	}
	return t, nil
}

// Count returns the number of slots in the table.
func (r *TeeTimeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM tee_times")
	return n, err
}

// CreateMany inserts slots in one transaction. Slots that collide with an
// existing course/date/time/holes row are skipped so seeding is repeatable.
func (r *TeeTimeRepo) CreateMany(ctx context.Context, slots []model.TeeTime) error {
	if len(slots) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		for start := 0; start < len(slots); start += insertBatch {
			end := min(start+insertBatch, len(slots))
			rows := make([]teeTimeRow, 0, end-start)
			for _, s := range slots[start:end] {
				rows = append(rows, newTeeTimeRow(s))
			}
			if _, err := tx.NamedExecContext(ctx,
				`INSERT IGNORE INTO tee_times (id, course, date, time, holes, available, created_at, updated_at)
				 VALUES (:id, :course, :date, :time, :holes, :available, :created_at, :updated_at)`,
				rows); err != nil {
				return err
			}
		}
		return nil
	})
}

// teeTimeRow is the insert shape: the date column receives a plain
// YYYY-MM-DD string so the calendar day never shifts with the session zone.
type teeTimeRow struct {
	ID        string      `db:"id"`
	Course    string      `db:"course"`
	Date      string      `db:"date"`
	Time      string      `db:"time"`
	Holes     model.Holes `db:"holes"`
	Available bool        `db:"available"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func newTeeTimeRow(t model.TeeTime) teeTimeRow {
	return teeTimeRow{
		ID:        t.ID,
		Course:    t.Course,
		Date:      t.Date.Format(model.DateLayout),
		Time:      t.Time,
		Holes:     t.Holes,
		Available: t.Available,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
