package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"notably/internal/authz"
	"notably/internal/common"
)

// Require rejects the request with 403 and the given message when the
// authenticated principal lacks the capability. Must run after JWTMiddleware.
func Require(cap authz.Capability, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			if !cap(principal) {
				return echo.NewHTTPError(http.StatusForbidden, message)
			}

			return next(c)
		}
	}
}
