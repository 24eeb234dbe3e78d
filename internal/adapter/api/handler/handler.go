package handler

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/middleware"
	"civiq/pkg/errors"
)

var (
	reportHandler       *ReportHandler
	notificationHandler *NotificationHandler
	badgeHandler        *BadgeHandler
	profileHandler      *ProfileHandler
	replyHandler        *ReplyHandler
	healthHandler       *HealthHandler
	webSocketHandler    *WebSocketHandler
)

type Handlers struct {
	Report       *ReportHandler
	Notification *NotificationHandler
	Badge        *BadgeHandler
	Profile      *ProfileHandler
	Reply        *ReplyHandler
	Health       *HealthHandler
	WebSocket    *WebSocketHandler
}

func Setup(h Handlers) {
	reportHandler = h.Report
	notificationHandler = h.Notification
	badgeHandler = h.Badge
	profileHandler = h.Profile
	replyHandler = h.Reply
	healthHandler = h.Health
	webSocketHandler = h.WebSocket
}

func GetReportHandler() *ReportHandler {
	return reportHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetBadgeHandler() *BadgeHandler {
	return badgeHandler
}

func GetProfileHandler() *ProfileHandler {
	return profileHandler
}

func GetReplyHandler() *ReplyHandler {
	return replyHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

// currentUser returns the uid and role set by the auth middleware.
func currentUser(c echo.Context) (string, string, error) {
	uid, ok := c.Get(middleware.ContextUID).(string)
	if !ok || uid == "" {
		return "", "", errors.Unauthorized("Authentication required", nil)
	}
	role, _ := c.Get(middleware.ContextRole).(string)
	return uid, role, nil
}

// bindAndValidate binds the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}
