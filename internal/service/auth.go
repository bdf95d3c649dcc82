package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
	"github.com/iliyamo/golf-tee-booking/internal/utils"
)

const msgInvalidCredentials = "Invalid email or password"

// AuthService registers accounts and issues and revokes access tokens.
type AuthService struct {
	users  UserStore
	tokens TokenRevoker
	cfg    config.AuthConfig
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenRevoker, cfg config.AuthConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens, cfg: cfg, now: time.Now}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Phone    string
}

// Register validates in and creates the account. A taken email is reported
// before a taken username.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Phone = strings.TrimSpace(in.Phone)
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return model.User{}, err
	}
	switch {
	case in.Name == "":
		return model.User{}, apperr.Validation("Name is required")
	case in.Username == "":
		return model.User{}, apperr.Validation("Username is required")
	case len(in.Password) < utils.MinPasswordLength:
		return model.User{}, apperr.Validation("Password must be at least 6 characters long")
	case len(in.Password) > utils.MaxPasswordLength:
		return model.User{}, apperr.Validation("Password must be at most 72 bytes")
	case in.Phone == "":
		return model.User{}, apperr.Validation("Phone number is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.User{}, apperr.Conflict("Email already in use")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.Internal("Registration failed", err)
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return model.User{}, apperr.Conflict("Username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.Internal("Registration failed", err)
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, apperr.Internal("Registration failed", err)
	}
	now := s.now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// a concurrent registration can still win the unique index
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return model.User{}, apperr.Conflict("Email already in use")
		case errors.Is(err, repository.ErrUsernameExists):
			return model.User{}, apperr.Conflict("Username already taken")
		}
		return model.User{}, apperr.Internal("Registration failed", err)
	}
	return u, nil
}

// LoginResult is a freshly issued token and the account it belongs to.
type LoginResult struct {
	Token utils.AccessToken
	User  model.User
}

// Login checks credentials. Unknown email and wrong password produce the
// same error after the same amount of bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, apperr.Validation("Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyDecoy(password, s.cfg.BcryptCost)
			return LoginResult{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return LoginResult{}, apperr.Internal("Login failed", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.TokenTTL, s.now())
	if err != nil {
		return LoginResult{}, apperr.Internal("Login failed", err)
	}
	return LoginResult{Token: tok, User: u}, nil
}

// Authenticate verifies a raw bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*utils.Claims, error) {
	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("Authentication failed", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("Token has been revoked")
	}
	return claims, nil
}

// Logout revokes the token described by claims for the rest of its life.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Internal("Logout failed", err)
	}
	return nil
}

// CurrentUser loads the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.NotFound("User not found")
		}
		return model.User{}, apperr.Internal("Failed to load user", err)
	}
	return u, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("Please provide a valid email")
	}
	return email, nil
}
