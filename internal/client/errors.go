package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ShaileshBisht/DecentraLink/internal/shared/errs"
)

var ErrSignInInProgress = errors.New("sign-in already in progress")

// APIError is a non-2xx response. It unwraps to the matching errs sentinel so
// callers can use errors.Is(err, errs.ErrConflict) and friends.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return errs.ErrValidation
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusConflict:
		return errs.ErrConflict
	}
	return nil
}
