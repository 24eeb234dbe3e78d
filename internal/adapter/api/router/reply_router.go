package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
	"civiq/internal/infrastructure/ratelimit"
)

func SetupReplyRouter(e *echo.Echo, m Middlewares) {
	replyHandler := handler.GetReplyHandler()

	admin := e.Group("/api/admin/generate-reply")
	admin.Use(m.Auth.Authenticate)
	admin.Use(m.Admin.AdminOnly)

	admin.POST("", replyHandler.GenerateReplies, m.RateLimit.Limit(ratelimit.ActionGenerateReply))
}
