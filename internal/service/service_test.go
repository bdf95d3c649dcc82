package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/queue"
	"github.com/iliyamo/golf-tee-booking/internal/repository/memory"
)

var (
	testNow = time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	today   = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 24 * time.Hour, BcryptCost: 4}
}

// fixture bundles the services over one in-memory store.
type fixture struct {
	store    *memory.Store
	tokens   *memory.TokenStore
	auth     *AuthService
	bookings *BookingManager
	teeTimes *TeeTimeService
	events   *recordingPublisher
	cache    *mockInvalidator
}

func newFixture() *fixture {
	store := memory.NewStore()
	tokens := memory.NewTokenStore()
	events := &recordingPublisher{}
	cache := &mockInvalidator{}
	cache.On("Invalidate", mock.Anything).Return(nil).Maybe()

	f := &fixture{
		store:    store,
		tokens:   tokens,
		auth:     NewAuthService(store.Users(), tokens, testAuthConfig()),
		bookings: NewBookingManager(store.Users(), store.TeeTimes(), store.Bookings(), events, cache),
		teeTimes: NewTeeTimeService(store.TeeTimes(), time.UTC),
		events:   events,
		cache:    cache,
	}
	// auth keeps the real clock: token expiry is checked against time.Now
	clock := func() time.Time { return testNow }
	f.bookings.now = clock
	f.teeTimes.now = clock
	return f
}

func (f *fixture) addSlot(id, course string, date time.Time, clock string, holes model.Holes, available bool) {
	err := f.store.TeeTimes().CreateMany(context.Background(), []model.TeeTime{{
		ID: id, Course: course, Date: date, Time: clock, Holes: holes, Available: available,
	}})
	if err != nil {
		panic(err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// failingBookings makes every Book call fail with err.
type failingBookings struct {
	BookingStore
	err error
}

func (f failingBookings) Book(context.Context, model.Booking) (model.TeeTime, error) {
	return model.TeeTime{}, f.err
}

var errStorage = errors.New("storage offline")
