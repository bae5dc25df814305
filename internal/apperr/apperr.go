// Package apperr classifies failures surfaced to API callers.
package apperr

import (
	"errors"

	"backend-socialfeed/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	InvalidToken
	Validation
	InvalidCredentials
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case InvalidToken:
		return "invalid_token"
	case Validation:
		return "validation"
	case InvalidCredentials:
		return "invalid_credentials"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Status is the HTTP status a failure of this kind is reported with.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return fiber.StatusBadRequest
	case Unauthenticated, InvalidToken, InvalidCredentials:
		return fiber.StatusUnauthorized
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrUnauthenticated    = New(Unauthenticated, "Unauthenticated")
	ErrInvalidToken       = New(InvalidToken, "Invalid Token")
	ErrInvalidCredentials = New(InvalidCredentials, "Invalid Username and Password")
	ErrPostNotFound       = New(NotFound, "Post not found")
	ErrUserNotFound       = New(NotFound, "User not found")
	ErrDuplicateUsername  = New(Validation, "Username has already been taken")
	ErrDuplicateEmail     = New(Validation, "Email has already been taken")
	ErrInvalidEmailFormat = New(Validation, "Invalid email format")
	ErrPasswordTooShort   = New(Validation, "Password must at least has 5 characters")
)

// KindOf reports the kind of err; errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Status maps err onto an HTTP status code. *fiber.Error keeps its own code.
func Status(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return KindOf(err).Status()
}

// PublicMessage is the message safe to show a caller; internal causes are hidden.
func PublicMessage(err error) string {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Message
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != Internal {
		return appErr.Message
	}
	return "Internal Server Error"
}

// ErrorHandler renders failures as {"error": {"message", "status"}} and logs
// the cause of anything classified as internal.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := Status(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{
				"message": PublicMessage(err),
				"status":  status,
			},
		})
	}
}
