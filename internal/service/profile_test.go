package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
	"github.com/iliyamo/golf-tee-booking/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newProfileFixture(t *testing.T) (*fixture, *ProfileService, string, string) {
	t.Helper()
	f := newFixture()
	dir := t.TempDir()
	disk, err := storage.NewDisk(dir, "/uploads")
	require.NoError(t, err)
	userID := registerAlex(t, f)
	return f, NewProfileService(f.store.Users(), disk, 1<<20), userID, dir
}

func picture(name string, body []byte) *Picture {
	return &Picture{Filename: name, Size: int64(len(body)), Body: bytes.NewReader(body)}
}

func TestProfileUpdate_FieldsAndPicture(t *testing.T) {
	_, svc, userID, dir := newProfileFixture(t)

	u, err := svc.Update(context.Background(), userID, ProfileUpdate{
		Name:    "Alex G.",
		Email:   "NEW@example.com",
		Picture: picture("me.PNG", pngHeader),
	})
	require.NoError(t, err)

	assert.Equal(t, "Alex G.", u.Name)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, "555-0100", u.Phone, "empty fields keep the stored value")
	require.NotNil(t, u.ProfilePicture)
	assert.True(t, strings.HasPrefix(*u.ProfilePicture, "/uploads/"))
	assert.True(t, strings.HasSuffix(*u.ProfilePicture, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(*u.ProfilePicture)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestProfileUpdate_RejectsPictures(t *testing.T) {
	tests := []struct {
		name string
		pic  *Picture
	}{
		{"extension", picture("me.gif", []byte("GIF89a"))},
		{"content does not match extension", picture("me.jpg", pngHeader)},
		{"not an image", picture("me.png", []byte("hello world"))},
		{"too large", &Picture{Filename: "me.png", Size: 2 << 20, Body: bytes.NewReader(pngHeader)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc, userID, dir := newProfileFixture(t)

			_, err := svc.Update(context.Background(), userID, ProfileUpdate{Name: "Changed", Picture: tt.pic})
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)

			u, err := svc.users.GetByID(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, "Alex Golfer", u.Name, "nothing applied on rejection")
		})
	}
}

func TestProfileUpdate_EmailTaken(t *testing.T) {
	f, svc, userID, dir := newProfileFixture(t)
	other := validRegistration()
	other.Username = "sam"
	other.Email = "sam@example.com"
	_, err := f.auth.Register(context.Background(), other)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), userID, ProfileUpdate{
		Email:   "sam@example.com",
		Picture: picture("me.png", pngHeader),
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Email already in use", apperr.PublicMessage(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "stored picture is removed when the update fails")
}

func TestProfileUpdate_BadEmailAndMissingUser(t *testing.T) {
	_, svc, userID, _ := newProfileFixture(t)

	_, err := svc.Update(context.Background(), userID, ProfileUpdate{Email: "nope"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Update(context.Background(), "ghost", ProfileUpdate{Name: "x"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
