package echoapi

import "github.com/labstack/echo/v4"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(ctx echo.Context, code int, message string, data interface{}) error {
	return ctx.JSON(code, Response{Success: true, Message: message, Data: data})
}

func respondError(ctx echo.Context, code int, message string, errDetail interface{}) error {
	return ctx.JSON(code, Response{Success: false, Message: message, Error: errDetail})
}
