package externalApi

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("error not found")
	ErrUnauthorized = errors.New("error unauthorized")
)

// APIError carries the backend's own error message for surfacing to the user.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tracker api responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("tracker api responded with status %d: %s", e.StatusCode, e.Message)
}
