package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/golf-tee-booking/internal/model"
)

// Schedule describes a repeating grid of tee times.
type Schedule struct {
	Days    int
	Courses []string
	Holes   []model.Holes
	Times   []string
}

// DefaultSchedule is the demo grid: four courses, both round lengths,
// hourly starts from 07:00 to 12:00, for thirty days.
func DefaultSchedule() Schedule {
	return Schedule{
		Days:    30,
		Courses: []string{"Pine Valley", "Augusta National", "St Andrews", "Pebble Beach"},
		Holes:   []model.Holes{model.Holes9, model.Holes18},
		Times:   []string{"07:00", "08:00", "09:00", "10:00", "11:00", "12:00"},
	}
}

// Generate expands the schedule into available slots starting on start's
// calendar day in loc.
func (sc Schedule) Generate(start time.Time, loc *time.Location) ([]model.TeeTime, error) {
	for _, t := range sc.Times {
		if !model.ValidClock(t) {
			return nil, fmt.Errorf("schedule: invalid time %q", t)
		}
	}
	day := model.StartOfDay(start, loc)
	// the DATE column has no zone; keep the calendar day, drop the offset
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	now := start.UTC().Truncate(time.Second)

	out := make([]model.TeeTime, 0, sc.Days*len(sc.Courses)*len(sc.Holes)*len(sc.Times))
	for d := 0; d < sc.Days; d++ {
		date := day.AddDate(0, 0, d)
		for _, course := range sc.Courses {
			for _, h := range sc.Holes {
				for _, t := range sc.Times {
					out = append(out, model.TeeTime{
						ID:        uuid.NewString(),
						Course:    course,
						Date:      date,
						Time:      t,
						Holes:     h,
						Available: true,
						CreatedAt: now,
						UpdatedAt: now,
					})
				}
			}
		}
	}
	return out, nil
}

// Seed inserts the schedule. With onlyIfEmpty set, a store that already
// holds tee times is left untouched. It returns the number of generated
// slots, or zero when skipped.
func Seed(ctx context.Context, store TeeTimeStore, sc Schedule, start time.Time, loc *time.Location, onlyIfEmpty bool) (int, error) {
	if onlyIfEmpty {
		n, err := store.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count tee times: %w", err)
		}
		if n > 0 {
			return 0, nil
		}
	}
	slots, err := sc.Generate(start, loc)
	if err != nil {
		return 0, err
	}
	if err := store.CreateMany(ctx, slots); err != nil {
		return 0, fmt.Errorf("insert tee times: %w", err)
	}
	return len(slots), nil
}
