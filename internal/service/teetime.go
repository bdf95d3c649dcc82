package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/model"
)

// TeeTimeService answers availability queries.
type TeeTimeService struct {
	store TeeTimeStore
	loc   *time.Location
	now   func() time.Time
}

// NewTeeTimeService uses loc to decide where "today" starts.
func NewTeeTimeService(store TeeTimeStore, loc *time.Location) *TeeTimeService {
	if loc == nil {
		loc = time.UTC
	}
	return &TeeTimeService{store: store, loc: loc, now: time.Now}
}

// ListAvailable returns open slots for course and holes from today's
// midnight onward, ordered by date then time. No matches is an empty
// slice, never an error.
func (s *TeeTimeService) ListAvailable(ctx context.Context, course, holes string) ([]model.TeeTime, error) {
	course = strings.TrimSpace(course)
	if course == "" {
		return nil, apperr.Validation("Course is required")
	}
	h, err := model.ParseHoles(holes)
	if err != nil {
		return nil, apperr.Validation("Holes must be 9H or 18H")
	}

	from := model.StartOfDay(s.now(), s.loc)
	slots, err := s.store.ListAvailable(ctx, course, h, from)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch tee times", err)
	}
	if slots == nil {
		slots = []model.TeeTime{}
	}
	return slots, nil
}
