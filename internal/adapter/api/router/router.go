package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/middleware"
)

type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Admin     *middleware.AdminMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func Setup(e *echo.Echo, m Middlewares) {
	SetupHealthRouter(e)
	SetupReportRouter(e, m)
	SetupNotificationRouter(e, m)
	SetupBadgeRouter(e, m)
	SetupProfileRouter(e, m)
	SetupReplyRouter(e, m)
	SetupWebSocketRouter(e)
}
