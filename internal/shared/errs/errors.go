// Package errs holds the error taxonomy shared by services and handlers.
package errs

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation error")
)

// Status maps a service error onto the HTTP status it is surfaced as.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// HTTP converts err into a *fiber.Error. Unclassified errors keep their
// detail out of the response body.
func HTTP(err error) error {
	status := Status(err)
	if status == fiber.StatusInternalServerError {
		return fiber.NewError(status, "internal error")
	}
	return fiber.NewError(status, err.Error())
}
