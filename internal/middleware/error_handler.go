package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler renders every unhandled error as the service's
// {status, message} envelope.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		}
	}

	if message == "" {
		switch code {
		case http.StatusNotFound:
			message = "Resource not found"
		case http.StatusUnauthorized:
			message = "Authentication required"
		case http.StatusForbidden:
			message = "You don't have permission to access this resource"
		case http.StatusBadRequest:
			message = "The request could not be processed"
		default:
			message = "Something went wrong. Please try again later."
		}
	}

	c.Logger().Error(err)

	if err := c.JSON(code, map[string]string{"status": "error", "message": message}); err != nil {
		c.Logger().Error(err)
	}
}
