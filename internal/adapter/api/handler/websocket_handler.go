package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/middleware"
	"civiq/internal/domain/entity"
	"civiq/internal/domain/service"
	ws "civiq/internal/infrastructure/websocket"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
	"civiq/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
	}
}

// HandleWebSocket authenticates with ?token= (browsers cannot set headers on
// the upgrade request) and subscribes the connection to the caller's
// personal topic, plus the reports topic for admins.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return response.Error(c, errors.Unauthorized("Token is required", nil))
	}

	identity, role, err := h.authMiddleware.Resolve(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	topics := []string{service.NotificationTopic(identity.UID)}
	if role == entity.RoleAdmin {
		topics = append(topics, service.TopicReports)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("websocket upgrade failed: %v", err)
		return nil
	}

	client := ws.NewClient(identity.UID, conn, topics...)
	if !h.wsManager.Add(client) {
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
