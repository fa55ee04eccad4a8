package servicenow

import (
	"encoding/json"
	"fmt"
)

// APIError represents a structured error response from the Table API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("servicenow: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("servicenow: %d %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	if e, ok := err.(*APIError); ok {
		return e.StatusCode == 404
	}
	return false
}

// IsAuthFailed returns true if the error is a 401 or 403.
func IsAuthFailed(err error) bool {
	if e, ok := err.(*APIError); ok {
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return false
}

// errorEnvelope is the Table API error wire shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
	Status string `json:"status"`
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		return &APIError{StatusCode: statusCode, Message: string(body)}
	}
	return &APIError{StatusCode: statusCode, Message: env.Error.Message, Detail: env.Error.Detail}
}
