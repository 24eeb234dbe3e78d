package handler

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/usecase"
	"civiq/pkg/response"
	"civiq/pkg/utils"
)

type NotificationHandler struct {
	notifications *usecase.NotificationUseCase
}

func NewNotificationHandler(notifications *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
	}
}

type sendMessageRequest struct {
	RecipientID string  `json:"recipientId" validate:"required"`
	ReportID    *string `json:"reportId"`
	Content     string  `json:"content" validate:"required,max=2000"`
}

type broadcastRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	notifications, err := h.notifications.ListForUser(c.Request().Context(), uid, utils.GetLimitParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, notifications)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	updated, err := h.notifications.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) GetSummary(c echo.Context) error {
	uid, role, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	summary, err := h.notifications.GetSummary(c.Request().Context(), uid, role)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}

func (h *NotificationHandler) SendMessage(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	notification, err := h.notifications.SendAdminMessage(c.Request().Context(), uid, req.RecipientID, req.ReportID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "Message sent", notification)
}

func (h *NotificationHandler) Broadcast(c echo.Context) error {
	uid, _, err := currentUser(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req broadcastRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.notifications.NotifyAll(c.Request().Context(), uid, req.Content)
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, "Broadcast sent", result)
}
