package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/golf-tee-booking/internal/middleware"
	"github.com/iliyamo/golf-tee-booking/internal/service"
)

// profilePictureField is the multipart field carrying the upload.
const profilePictureField = "profilePicture"

type ProfileHandler struct {
	Profiles *service.ProfileService
}

func NewProfileHandler(p *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{Profiles: p}
}

// Update handles POST /api/update-profile (multipart/form-data with
// optional name, email, phone and profilePicture).
func (h *ProfileHandler) Update(c echo.Context) error {
	in := service.ProfileUpdate{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
	}

	fh, err := c.FormFile(profilePictureField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return badRequest(c, "Invalid upload")
	default:
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "Invalid upload")
		}
		defer f.Close()
		in.Picture = &service.Picture{Filename: fh.Filename, Size: fh.Size, Body: f}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.Profiles.Update(ctx, middleware.UserID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, userResponse(u, "Profile updated successfully"))
}
