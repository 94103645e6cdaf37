package dojo

import (
	"errors"
	"fmt"
)

// ErrorResponse struct
type ErrorResponse struct {
	Detail  any            `json:"detail,omitempty"`
	Message string         `json:"message,omitempty"`
	Errors  []ErrorDetails `json:"errors,omitempty"`
}

// ErrorDetails for detailed error and message
type ErrorDetails struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

// Text returns the most specific message the API sent, if any.
func (e *ErrorResponse) Text() string {
	if len(e.Errors) > 0 && e.Errors[0].Message != "" {
		return e.Errors[0].Message
	}
	if e.Message != "" {
		return e.Message
	}
	switch detail := e.Detail.(type) {
	case string:
		return detail
	case []any:
		// validation errors come as a list of {loc, msg, type}
		if len(detail) > 0 {
			if item, ok := detail[0].(map[string]any); ok {
				if msg, ok := item["msg"].(string); ok {
					return msg
				}
			}
		}
	}
	return ""
}

// APIError is a non-2xx answer that is not covered by a sentinel.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dojo API error (%d): %s", e.StatusCode, e.Message)
}

var ErrorNotFound = errors.New("resource not found")
var ErrorUnauthorized = errors.New("unauthorized: check DOJO_USERNAME and DOJO_TOKEN")
var ErrorMissingAccessToken = errors.New("login response carries no access token")
