package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/utils"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// JWTMiddleware rejects requests without a valid bearer token and stores
// "user_id" and "role" on the context.
func JWTMiddleware(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}
			claims, err := p.Parse(tokenStr)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			role := RoleUser
			if claims.Admin {
				role = RoleAdmin
			}
			c.Set("user_id", claims.UserID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// UserID returns the id stored by JWTMiddleware.
func UserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// Role returns RoleAdmin or RoleUser as stored by JWTMiddleware, or ""
// when the request carried no token.
func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
