package models

import (
	"errors"
	"net/http"
	"strings"
)

var ErrValidation = errors.New("validation failed")
var ErrUnauthorized = errors.New("missing or invalid credentials")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrNotFound = errors.New("requested resource not found")
var ErrConflict = errors.New("resource conflict")

// ErrInvalidTransition indicates the requested change is not allowed from the
// entity's current state (for example delivered -> picked).
var ErrInvalidTransition = errors.New("transition not allowed from current state")

// ErrGateway wraps failures reported by an upstream payment provider. The
// provider's message is kept in the wrapped error text.
var ErrGateway = errors.New("payment gateway error")

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is returned by endpoints that only acknowledge an action.
type MessageResponse struct {
	Message string `json:"message"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrInvalidTransition, http.StatusConflict},
	{ErrConflict, http.StatusConflict},
	{ErrGateway, http.StatusInternalServerError},
}

// HTTPStatus maps err to a status code and a client message. Errors wrapped
// as "%w: detail" expose the detail; unknown errors yield 500 and "".
func HTTPStatus(err error) (int, string) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status, detail(err, s.err)
		}
	}
	return http.StatusInternalServerError, ""
}

func detail(err, sentinel error) string {
	msg, key := err.Error(), sentinel.Error()
	if i := strings.Index(msg, key+": "); i >= 0 {
		return msg[i+len(key)+2:]
	}
	return key
}
