// Package httperr holds the JSON error envelope shared by handlers and
// middleware: {"error":{"code":"...","message":"..."}}.
package httperr

import "github.com/labstack/echo/v4"

type Payload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Body is the response body of every non-2xx API response.
type Body struct {
	Error Payload `json:"error"`
}

func New(code, message string) Body {
	return Body{Error: Payload{Code: code, Message: message}}
}

// Write sends the envelope with status.
func Write(c echo.Context, status int, code, message string) error {
	return c.JSON(status, New(code, message))
}
