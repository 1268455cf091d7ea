package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/aerolux/concierge-admin/internal/core/domain"
)

// RequireRole enforces role-based access control. Auth must run first.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who := Identity(c)
			if who == nil {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[who.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireCapability runs the access gate for capability.
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := Identity(c).Authorize(capability); err != nil {
				return err
			}
			return next(c)
		}
	}
}
