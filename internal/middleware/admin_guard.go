package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard lets only admin tokens reach admin routes. Must run after
// JWTMiddleware.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		switch Role(c) {
		case RoleAdmin:
			return next(c)
		case "":
			return c.JSON(http.StatusForbidden, echo.Map{"error": "role missing"})
		default:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access only"})
		}
	}
}

// AdminOnly chains token parsing and the admin guard. When enabled is
// false it returns no middleware and admin routes stay open.
func AdminOnly(p TokenParser, enabled bool) []echo.MiddlewareFunc {
	if !enabled {
		return nil
	}
	return []echo.MiddlewareFunc{JWTMiddleware(p), AdminGuard}
}
