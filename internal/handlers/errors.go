package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPErrorHandler renders every failure as {"error": string}. 5xx responses
// always carry the generic message; the real cause is only logged server-side.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		zap.L().Error("failed to write error response", zap.Error(writeErr))
	}
}

// internalError hides the cause from the caller; the error handler logs it.
func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
