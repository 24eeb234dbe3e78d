package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
)

// SetupWebSocketRouter leaves /ws outside the auth group; the handler
// authenticates from the query string.
func SetupWebSocketRouter(e *echo.Echo) {
	e.GET("/ws", handler.GetWebSocketHandler().HandleWebSocket)
}
