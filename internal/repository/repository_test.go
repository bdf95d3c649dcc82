package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/golf-tee-booking/internal/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

var (
	teeTimeCols = []string{"id", "course", "date", "time", "holes", "available", "created_at", "updated_at"}
	userCols    = []string{"id", "name", "username", "email", "password_hash", "phone", "profile_picture", "created_at", "updated_at"}
	day         = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	now         = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
)

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`(?s)^SELECT id, name, username, email, password_hash, phone, profile_picture, created_at, updated_at FROM users WHERE email = \? LIMIT 1$`).
		WithArgs("alex@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "Alex", "alex", "alex@example.com", "hash", "555-0100", nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "  Alex@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Nil(t, u.ProfilePicture)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepo_Create_Duplicates(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"email", "users.uq_users_email", ErrEmailExists},
		{"username", "users.uq_users_username", ErrUsernameExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewUserRepo(db)

			mock.ExpectExec(`INSERT INTO users`).
				WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key '" + tt.key + "'"})

			err := repo.Create(context.Background(), model.User{ID: "u1", Email: "a@b.c", Username: "a"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserRepo_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)
	pic := "/uploads/1-a.png"

	mock.ExpectExec(`UPDATE users SET name = \?, email = \?, phone = \?, profile_picture = \?, updated_at = \? WHERE id = \?`).
		WithArgs("Alex B", "alex@example.com", "555", &pic, now, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), model.User{ID: "u1", Name: "Alex B", Email: "alex@example.com", Phone: "555", ProfilePicture: &pic, UpdatedAt: now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeeTimeRepo_ListAvailable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTeeTimeRepo(db)

	mock.ExpectQuery(`(?s)FROM tee_times\s+WHERE course = \? AND holes = \? AND available = TRUE AND date >= \?\s+ORDER BY date ASC, time ASC`).
		WithArgs("Pine Valley", model.Holes18, "2026-03-14").
		WillReturnRows(sqlmock.NewRows(teeTimeCols).
			AddRow("s1", "Pine Valley", day, "07:00", "18H", true, now, now).
			AddRow("s2", "Pine Valley", day, "09:00", "18H", true, now, now))

	got, err := repo.ListAvailable(context.Background(), "Pine Valley", model.Holes18, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "07:00", got[0].Time)
	assert.Equal(t, model.Holes18, got[1].Holes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeeTimeRepo_ListAvailable_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTeeTimeRepo(db)

	mock.ExpectQuery(`FROM tee_times`).WillReturnRows(sqlmock.NewRows(teeTimeCols))

	got, err := repo.ListAvailable(context.Background(), "Nowhere", model.Holes9, now)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTeeTimeRepo_CreateMany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTeeTimeRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT IGNORE INTO tee_times`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.CreateMany(context.Background(), []model.TeeTime{
		{ID: "s1", Course: "Pine Valley", Date: day, Time: "07:00", Holes: model.Holes9, Available: true},
		{ID: "s2", Course: "Pine Valley", Date: day, Time: "08:00", Holes: model.Holes9, Available: true},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectSlotLock(mock sqlmock.Sqlmock, available bool) {
	mock.ExpectQuery(`FROM tee_times WHERE id = \? FOR UPDATE`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(teeTimeCols).
			AddRow("s1", "Pine Valley", day, "09:00", "18H", available, now, now))
}

func TestBookingRepo_Book_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.Booking{ID: "b1", UserID: "u1", TeeTimeID: "s1", Players: 2, CreatedAt: now}

	mock.ExpectBegin()
	expectSlotLock(mock, true)
	mock.ExpectExec(`UPDATE tee_times SET available = FALSE, updated_at = \? WHERE id = \? AND available = TRUE`).
		WithArgs(now, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings \(id, user_id, tee_time_id, players, created_at\)`).
		WithArgs("b1", "u1", "s1", 2, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	slot, err := repo.Book(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, slot.Available)
	assert.Equal(t, "Pine Valley", slot.Course)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Book_Unavailable(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	expectSlotLock(mock, false)
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), model.Booking{ID: "b1", UserID: "u1", TeeTimeID: "s1", Players: 2, CreatedAt: now})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Book_LostRace(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	expectSlotLock(mock, true)
	mock.ExpectExec(`UPDATE tee_times`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), model.Booking{ID: "b1", UserID: "u1", TeeTimeID: "s1", Players: 2, CreatedAt: now})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Book_InsertFailsRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	expectSlotLock(mock, true)
	mock.ExpectExec(`UPDATE tee_times`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), model.Booking{ID: "b1", UserID: "u1", TeeTimeID: "s1", Players: 2, CreatedAt: now})
	assert.EqualError(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_Book_MissingSlot(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(teeTimeCols))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), model.Booking{ID: "b1", UserID: "u1", TeeTimeID: "nope", Players: 1, CreatedAt: now})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepo_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	cols := []string{"id", "user_id", "tee_time_id", "players", "created_at",
		"t_course", "t_date", "t_time", "t_holes", "t_available", "t_created_at", "t_updated_at"}
	mock.ExpectQuery(`(?s)FROM bookings b\s+JOIN tee_times t ON t.id = b.tee_time_id WHERE b.user_id = \? ORDER BY b.created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b2", "u1", "s2", 4, now.Add(time.Hour), "St Andrews", day, "10:00", "9H", false, now, now).
			AddRow("b1", "u1", "s1", 2, now, "Pine Valley", day, "09:00", "18H", false, now, now))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b2", got[0].ID)
	assert.Equal(t, "St Andrews", got[0].TeeTime.Course)
	assert.Equal(t, "s1", got[1].TeeTime.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
