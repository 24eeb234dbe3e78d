package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

const (
	ContextUID   = "uid"
	ContextEmail = "email"
	ContextRole  = "role"
)

// RoleResolver maps a verified identity to its role.
type RoleResolver interface {
	GetRole(ctx context.Context, identity *service.Identity) (string, error)
}

type AuthMiddleware struct {
	verifier service.IdentityVerifier
	roles    RoleResolver
}

func NewAuthMiddleware(verifier service.IdentityVerifier, roles RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		roles:    roles,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return errors.Unauthorized("Authorization header is required", nil)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return errors.Unauthorized("Invalid authorization format", nil)
		}

		identity, role, err := m.Resolve(c.Request().Context(), parts[1])
		if err != nil {
			return err
		}

		c.Set(ContextUID, identity.UID)
		c.Set(ContextEmail, identity.Email)
		c.Set(ContextRole, role)

		return next(c)
	}
}

// Resolve verifies a bearer token and looks up the caller's role.
func (m *AuthMiddleware) Resolve(ctx context.Context, token string) (*service.Identity, string, error) {
	identity, err := m.verifier.VerifyToken(ctx, token)
	if err != nil {
		return nil, "", errors.Unauthorized("Invalid or expired token", err)
	}

	role, err := m.roles.GetRole(ctx, identity)
	if err != nil {
		logger.Error("failed to resolve role for %s: %v", logger.MaskID(identity.UID), err)
		return nil, "", err
	}
	return identity, role, nil
}
