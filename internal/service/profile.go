package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/logging"
	"github.com/iliyamo/golf-tee-booking/internal/model"
	"github.com/iliyamo/golf-tee-booking/internal/repository"
	"github.com/iliyamo/golf-tee-booking/internal/storage"
)

var pictureTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Picture is an uploaded profile picture.
type Picture struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ProfileUpdate carries the submitted profile form. Empty fields keep the
// stored value.
type ProfileUpdate struct {
	Name    string
	Email   string
	Phone   string
	Picture *Picture
}

// ProfileService edits account details.
type ProfileService struct {
	users    UserStore
	pictures storage.PictureStore
	maxBytes int64
	now      func() time.Time
}

func NewProfileService(users UserStore, pictures storage.PictureStore, maxBytes int64) *ProfileService {
	return &ProfileService{users: users, pictures: pictures, maxBytes: maxBytes, now: time.Now}
}

// Update applies in to the user's profile and returns the stored result.
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileUpdate) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.NotFound("User not found")
		}
		return model.User{}, apperr.Internal("Failed to update profile", err)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		u.Phone = phone
	}
	if strings.TrimSpace(in.Email) != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return model.User{}, err
		}
		u.Email = email
	}

	var storedKey string
	if in.Picture != nil {
		key, ref, err := s.savePicture(ctx, in.Picture)
		if err != nil {
			return model.User{}, err
		}
		storedKey = key
		u.ProfilePicture = &ref
	}

	u.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if err := s.users.Update(ctx, u); err != nil {
		if storedKey != "" {
			if derr := s.pictures.Delete(context.WithoutCancel(ctx), storedKey); derr != nil {
				logging.FromContext(ctx).Warn().Err(derr).Str("key", storedKey).Msg("orphaned profile picture")
			}
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, apperr.Conflict("Email already in use")
		}
		return model.User{}, apperr.Internal("Failed to update profile", err)
	}
	return u, nil
}

// savePicture validates the upload by size, extension and sniffed content
// and stores it under "<unix-ms>-<uuid><ext>".
func (s *ProfileService) savePicture(ctx context.Context, p *Picture) (key, ref string, err error) {
	ext := strings.ToLower(filepath.Ext(p.Filename))
	want, ok := pictureTypes[ext]
	if !ok {
		return "", "", apperr.Validation("Only .png, .jpg and .jpeg format allowed!")
	}
	if s.maxBytes > 0 && p.Size > s.maxBytes {
		return "", "", apperr.Validation(fmt.Sprintf("Profile picture must be at most %d MB", s.maxBytes>>20))
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(p.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", apperr.Internal("Failed to read upload", err)
	}
	head = head[:n]
	if got := http.DetectContentType(head); got != want {
		return "", "", apperr.Validation("Only .png, .jpg and .jpeg format allowed!")
	}

	body := io.MultiReader(bytes.NewReader(head), p.Body)
	if s.maxBytes > 0 {
		// Size comes from the client; cap what is actually read.
		body = io.LimitReader(body, s.maxBytes)
	}
	key = fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.NewString(), ext)
	ref, err = s.pictures.Save(ctx, key, want, body, p.Size)
	if err != nil {
		return "", "", apperr.Internal("Failed to store profile picture", err)
	}
	return key, ref, nil
}
