package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/golf-tee-booking/internal/model"
)

const userColumns = "id, name, username, email, password_hash, phone, profile_picture, created_at, updated_at"

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u. The caller assigns the ID and hashes the password.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, username, email, password_hash, phone, profile_picture, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Username, u.Email, u.PasswordHash, u.Phone, u.ProfilePicture, u.CreatedAt, u.UpdatedAt)
	return mapUserWriteErr(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", strings.ToLower(strings.TrimSpace(email)))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", strings.TrimSpace(username))
}

// Update overwrites the mutable profile fields of u.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, phone = ?, profile_picture = ?, updated_at = ? WHERE id = ?",
		u.Name, u.Email, u.Phone, u.ProfilePicture, u.UpdatedAt, u.ID)
	return mapUserWriteErr(err)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	if err := r.DB.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

func mapUserWriteErr(err error) error {
	if err == nil {
		return nil
	}
	key, dup := duplicateKey(err)
	if !dup {
		return err
	}
	if strings.Contains(key, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
