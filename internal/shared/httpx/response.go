// Package httpx holds the request binding and error rendering shared by every fiber
// handler of the edge.
package httpx

import (
	"errors"
	"net/http"
	"strings"

	apperrors "clubportal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string                      `json:"error"`
	Message string                      `json:"message"`
	Fields  []apperrors.ValidationError `json:"fields,omitempty"`
}

// Error writes err as an ErrorResponse with the matching status. Internal failures get a
// generic message.
func Error(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: code(fe.Code), Message: fe.Message})
	}

	status := apperrors.HTTPStatus(err)
	body := ErrorResponse{
		Error:   code(status),
		Message: apperrors.UserMessage(err, http.StatusText(status)),
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.Code != "" {
			body.Error = appErr.Code
		}
		if appErr.Type == apperrors.ErrorTypeAuthentication || appErr.Type == apperrors.ErrorTypeAuthorization {
			body.Message = appErr.Message
		}
		if fields, ok := appErr.Details["validation_errors"].([]apperrors.ValidationError); ok {
			body.Fields = fields
		}
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler is the fiber.Config ErrorHandler for the edge.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return Error(c, err)
}

func code(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
