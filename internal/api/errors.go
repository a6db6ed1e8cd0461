package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when the stored credentials can no longer be
// exchanged for a valid access token. Both tokens have been cleared by the
// time callers see this error.
var ErrSessionExpired = errors.New("session expired, sign in again")

// Error carries a non-2xx backend response. Message holds the server's
// verbatim error text so views can surface it unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// newError builds an Error from a response body, falling back to the
// standard status text when the body carries no message.
func newError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			e.Message = payload.Error
		} else {
			e.Message = payload.Message
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsForbidden reports whether err is a backend 403.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsServerError reports whether err is any backend 5xx.
func IsServerError(err error) bool {
	return statusOf(err) >= 500
}

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
