package handler

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/usecase"
	"civiq/pkg/response"
)

type ReplyHandler struct {
	replies *usecase.ReplyUseCase
}

func NewReplyHandler(replies *usecase.ReplyUseCase) *ReplyHandler {
	return &ReplyHandler{
		replies: replies,
	}
}

type generateReplyRequest struct {
	IssueType   string `json:"issueType" validate:"required"`
	Description string `json:"description" validate:"required,max=4000"`
}

func (h *ReplyHandler) GenerateReplies(c echo.Context) error {
	var req generateReplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	replies := h.replies.GenerateReplies(c.Request().Context(), req.IssueType, req.Description)
	return response.Success(c, map[string][]string{"replies": replies})
}
