package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
)

func SetupBadgeRouter(e *echo.Echo, m Middlewares) {
	badgeHandler := handler.GetBadgeHandler()

	api := e.Group("/api")
	api.Use(m.Auth.Authenticate)

	api.GET("/badges/:userId", badgeHandler.ListBadges)
	api.GET("/achievements", badgeHandler.GetAchievements)
}
