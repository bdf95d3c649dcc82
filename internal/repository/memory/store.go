// Package memory provides process-local implementations of the stores.
// They back STORE_DRIVER=memory and the service tests. All state sits
// behind one mutex, which is what makes Book atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
)

// Store holds users, tee times and bookings.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	teeTimes map[string]model.TeeTime
	bookings map[string]model.Booking
	// bookingSeq orders bookings created within the same instant
	bookingSeq map[string]int
	seq        int
}

func NewStore() *Store {
	return &Store{
		users:      map[string]model.User{},
		teeTimes:   map[string]model.TeeTime{},
		bookings:   map[string]model.Booking{},
		bookingSeq: map[string]int{},
	}
}

// Users returns the user store view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// TeeTimes returns the tee-time store view.
func (s *Store) TeeTimes() *TeeTimeStore { return &TeeTimeStore{s: s} }

// Bookings returns the booking store view.
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

// UserStore is the in-memory counterpart of repository.UserRepo.
type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, user model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return repository.ErrUsernameExists
		}
	}
	u.s.users[user.ID] = user
	return nil
}

func (u *UserStore) GetByID(_ context.Context, id string) (model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (u *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return u.find(func(x model.User) bool { return x.Email == email })
}

func (u *UserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	return u.find(func(x model.User) bool { return strings.EqualFold(x.Username, username) })
}

func (u *UserStore) Update(_ context.Context, user model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range u.s.users {
		if id != user.ID && existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cur := u.s.users[user.ID]
	cur.Name, cur.Email, cur.Phone = user.Name, user.Email, user.Phone
	cur.ProfilePicture = user.ProfilePicture
	cur.UpdatedAt = user.UpdatedAt
	u.s.users[user.ID] = cur
	return nil
}

func (u *UserStore) find(match func(model.User) bool) (model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, x := range u.s.users {
		if match(x) {
			return x, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// TeeTimeStore is the in-memory counterpart of repository.TeeTimeRepo.
type TeeTimeStore struct{ s *Store }

func (t *TeeTimeStore) ListAvailable(_ context.Context, course string, holes model.Holes, from time.Time) ([]model.TeeTime, error) {
	fromDay := from.Format(model.DateLayout)
	t.s.mu.RLock()
	out := []model.TeeTime{}
	for _, tt := range t.s.teeTimes {
		if tt.Course == course && tt.Holes == holes && tt.Available && tt.Date.Format(model.DateLayout) >= fromDay {
			out = append(out, tt)
		}
	}
	t.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date.Format(model.DateLayout), out[j].Date.Format(model.DateLayout)
		if di != dj {
			return di < dj
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *TeeTimeStore) GetByID(_ context.Context, id string) (model.TeeTime, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	tt, ok := t.s.teeTimes[id]
	if !ok {
		return model.TeeTime{}, repository.ErrNotFound
	}
	return tt, nil
}

func (t *TeeTimeStore) Count(context.Context) (int, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return len(t.s.teeTimes), nil
}

// CreateMany skips slots whose course/date/time/holes already exist.
func (t *TeeTimeStore) CreateMany(_ context.Context, slots []model.TeeTime) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	seen := make(map[string]bool, len(t.s.teeTimes))
	for _, tt := range t.s.teeTimes {
		seen[slotKey(tt)] = true
	}
	for _, tt := range slots {
		if seen[slotKey(tt)] {
			continue
		}
		seen[slotKey(tt)] = true
		t.s.teeTimes[tt.ID] = tt
	}
	return nil
}

func slotKey(t model.TeeTime) string {
	return t.Course + "|" + t.Date.Format(model.DateLayout) + "|" + t.Time + "|" + string(t.Holes)
}

// BookingStore is the in-memory counterpart of repository.BookingRepo.
type BookingStore struct{ s *Store }

// Book checks, flips and records under the store's write lock.
func (b *BookingStore) Book(_ context.Context, booking model.Booking) (model.TeeTime, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	slot, ok := b.s.teeTimes[booking.TeeTimeID]
	if !ok {
		return model.TeeTime{}, repository.ErrNotFound
	}
	if !slot.Available {
		return model.TeeTime{}, repository.ErrSlotUnavailable
	}
	slot.Available = false
	slot.UpdatedAt = booking.CreatedAt
	b.s.teeTimes[slot.ID] = slot
	b.s.bookings[booking.ID] = booking
	b.s.seq++
	b.s.bookingSeq[booking.ID] = b.s.seq
	return slot, nil
}

func (b *BookingStore) ListByUser(_ context.Context, userID string) ([]model.BookingDetail, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	out := []model.BookingDetail{}
	for _, bk := range b.s.bookings {
		if bk.UserID == userID {
			out = append(out, model.BookingDetail{Booking: bk, TeeTime: b.s.teeTimes[bk.TeeTimeID]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return b.s.bookingSeq[out[i].ID] > b.s.bookingSeq[out[j].ID]
	})
	return out, nil
}

func (b *BookingStore) GetByID(_ context.Context, id string) (model.BookingDetail, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	bk, ok := b.s.bookings[id]
	if !ok {
		return model.BookingDetail{}, repository.ErrNotFound
	}
	return model.BookingDetail{Booking: bk, TeeTime: b.s.teeTimes[bk.TeeTimeID]}, nil
}

// TokenStore is a process-local revocation list used when Redis is not
// configured.
type TokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{revoked: map[string]time.Time{}, now: time.Now}
}

func (t *TokenStore) Revoke(_ context.Context, jti string, exp time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for k, until := range t.revoked {
		if !until.After(now) {
			delete(t.revoked, k)
		}
	}
	if exp.After(now) {
		t.revoked[jti] = exp
	}
	return nil
}

func (t *TokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.revoked[jti]
	return ok && until.After(t.now()), nil
}
