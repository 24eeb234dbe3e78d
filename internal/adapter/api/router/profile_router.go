package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
)

func SetupProfileRouter(e *echo.Echo, m Middlewares) {
	profileHandler := handler.GetProfileHandler()

	profile := e.Group("/api/profile")
	profile.Use(m.Auth.Authenticate)

	profile.GET("", profileHandler.GetProfile)
	profile.PATCH("", profileHandler.UpdateProfile)
}
