package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/arena-backend/internal/httperr"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse = httperr.Body

func writeError(c echo.Context, status int, code, message string) error {
	return httperr.Write(c, status, code, message)
}
