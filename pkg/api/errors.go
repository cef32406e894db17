package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError carries a non-2xx response through to the call site. The parsed
// body is kept as-is; callers surface Message and may inspect Body for
// anything else the server attached.
type APIError struct {
	StatusCode int
	Message    string
	Body       map[string]any
	Raw        []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("api error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newAPIError(statusCode int, raw []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Raw:        raw,
	}

	if err := json.Unmarshal(raw, &apiErr.Body); err == nil {
		if msg, ok := apiErr.Body["message"].(string); ok {
			apiErr.Message = msg
		}
	}

	return apiErr
}

// IsNotFound reports whether err is a 404 from the platform.
func IsNotFound(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 that survived the single
// transparent retry.
func IsUnauthorized(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
