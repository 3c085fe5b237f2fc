package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"notably/internal/common"
	"notably/internal/services"
)

// JWTMiddleware authenticates requests by the Authorization header. A missing
// header, a malformed scheme, or a token that fails verification all stop the
// request before any handler runs.
func JWTMiddleware(authService services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			principal, err := authService.ValidateToken(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := common.WithPrincipal(c.Request().Context(), *principal)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
