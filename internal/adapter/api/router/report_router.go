package router

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/adapter/api/handler"
	"civiq/internal/infrastructure/ratelimit"
)

func SetupReportRouter(e *echo.Echo, m Middlewares) {
	reportHandler := handler.GetReportHandler()

	e.GET("/api/public/reports", reportHandler.ListPublicReports)

	reports := e.Group("/api/reports")
	reports.Use(m.Auth.Authenticate)

	reports.GET("", reportHandler.ListOwnReports)
	reports.POST("", reportHandler.SubmitReport, m.RateLimit.Limit(ratelimit.ActionSubmitReport))

	admin := e.Group("/api/admin/reports")
	admin.Use(m.Auth.Authenticate)
	admin.Use(m.Admin.AdminOnly)

	admin.GET("", reportHandler.ListAllReports)
	admin.PATCH("/:id", reportHandler.UpdateStatus)
}
