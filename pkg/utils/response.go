package utils

import (
	"github.com/labstack/echo/v4"
)

// JSON menulis envelope standar {status, message, data}.
func JSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, echo.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}
