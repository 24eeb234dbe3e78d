package handler

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/usecase"
	"civiq/pkg/response"
)

type ProfileHandler struct {
	profiles *usecase.ProfileUseCase
}

func NewProfileHandler(profiles *usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
	}
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profiles.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, profile)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req usecase.UpdateProfileInput
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, "Profile updated", profile)
}
