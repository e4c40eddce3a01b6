package deepseek

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a client is constructed without an
	// API key. It is a configuration error and is never retried.
	ErrMissingAPIKey = errors.New("deepseek: API key is not set (export DEEPSEEK_API_KEY or run \"seekchat auth\")")

	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("deepseek: malformed response")

	// ErrNoChoices is returned when a non-streamed response carries no choices.
	ErrNoChoices = errors.New("deepseek: response contained no choices")
)

// APIError is returned for any non-2xx response from the completion endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("deepseek: status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("deepseek: status %d: %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether the error is an authentication failure.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
