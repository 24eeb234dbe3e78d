package middleware

import (
	"github.com/labstack/echo/v4"

	"civiq/internal/domain/entity"
	"civiq/pkg/errors"
)

type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// AdminOnly must run after Authenticate.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := c.Get(ContextUID).(string); !ok {
			return errors.Unauthorized("Authentication required", nil)
		}

		if role, _ := c.Get(ContextRole).(string); role != entity.RoleAdmin {
			return errors.Forbidden("Admin privileges required", nil)
		}

		return next(c)
	}
}
