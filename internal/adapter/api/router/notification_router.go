package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
	"civiq/internal/infrastructure/ratelimit"
)

func SetupNotificationRouter(e *echo.Echo, m Middlewares) {
	notificationHandler := handler.GetNotificationHandler()

	notifications := e.Group("/api/notifications")
	notifications.Use(m.Auth.Authenticate)

	notifications.GET("", notificationHandler.ListNotifications)
	notifications.GET("/summary", notificationHandler.GetSummary)
	notifications.POST("/mark-read", notificationHandler.MarkAllRead)

	admin := e.Group("/api/admin")
	admin.Use(m.Auth.Authenticate)
	admin.Use(m.Admin.AdminOnly)

	admin.POST("/messages", notificationHandler.SendMessage)
	admin.POST("/broadcast", notificationHandler.Broadcast, m.RateLimit.Limit(ratelimit.ActionBroadcast))
}
