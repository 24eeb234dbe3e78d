package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/response"
)

type HealthHandler struct {
	embedder service.ReadinessChecker
}

func NewHealthHandler(embedder service.ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		embedder: embedder,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CheckReady reports 503 until the embedding function has warmed up.
func (h *HealthHandler) CheckReady(c echo.Context) error {
	if !h.embedder.IsReady() {
		return response.Error(c, errors.NotReady("Embedding function is warming up"))
	}
	return response.Success(c, map[string]bool{"embedderReady": true})
}
