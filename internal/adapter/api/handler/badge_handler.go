package handler

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/usecase"
	"civiq/pkg/response"
)

type BadgeHandler struct {
	badges *usecase.BadgeUseCase
}

func NewBadgeHandler(badges *usecase.BadgeUseCase) *BadgeHandler {
	return &BadgeHandler{
		badges: badges,
	}
}

func (h *BadgeHandler) ListBadges(c echo.Context) error {
	badges, err := h.badges.ListBadges(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, badges)
}

func (h *BadgeHandler) GetAchievements(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	summary, err := h.badges.GetAchievements(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}
