// Package apperr is the error body every service writes to the wire.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/logging"
)

type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"validationErrors,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap keeps cause for logs only; it is never rendered.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func (e *Error) WithFields(fields map[string]string) *Error {
	cp := *e
	cp.Fields = fields
	return &cp
}

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_FAILED"
	CodeInternal        = "INTERNAL_EXCEPTION"
	CodeBadGateway      = "BAD_GATEWAY"
	CodeGatewayTimeout  = "GATEWAY_TIMEOUT"
)

func Unauthenticated() *Error {
	return New(http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
}

func Forbidden() *Error {
	return New(http.StatusForbidden, CodeForbidden, "access denied")
}

func Internal() *Error {
	return New(http.StatusInternalServerError, CodeInternal, "internal server error")
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// HTTPErrorHandler replaces echo's default handler. Unknown errors are
// logged in full and rendered as a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	body := toError(err)
	if body.Status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", body.Status, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(body.Status)
	} else {
		werr = c.JSON(body.Status, body)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response", "error", werr)
	}
}

func toError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		switch he.Code {
		case http.StatusUnauthorized:
			return New(he.Code, CodeUnauthenticated, msg)
		case http.StatusForbidden:
			return New(he.Code, CodeForbidden, msg)
		case http.StatusNotFound:
			return New(he.Code, CodeNotFound, msg)
		case http.StatusMethodNotAllowed:
			return New(he.Code, "METHOD_NOT_ALLOWED", msg)
		case http.StatusRequestEntityTooLarge:
			return New(he.Code, "PAYLOAD_TOO_LARGE", msg)
		}
		if he.Code >= 400 && he.Code < 500 {
			return New(he.Code, CodeBadRequest, msg)
		}
	}

	return Internal()
}
