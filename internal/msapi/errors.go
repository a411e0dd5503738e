// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// errors.go - Downstream error classification for the authenticated client.
//
// Non-2xx responses become an *APIError carrying the downstream status code
// and a best-effort extraction of the structured error body used by Graph,
// ARM, Power BI, and Azure OpenAI ({"error": {"code", "message"}}), falling
// back to the raw response text.

package msapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotImplemented marks actions that exist in the registry but have no
// working implementation yet. The HTTP layer surfaces it as a 501 envelope.
var ErrNotImplemented = errors.New("msapi: not implemented")

// APIError is a non-2xx response from a downstream API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("downstream error: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("downstream error: HTTP %d: %s", e.StatusCode, e.Message)
}

// NewAPIError builds an APIError from a response status and body, extracting
// error.code and error.message when the body is a structured error document.
func NewAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var parsed struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && (parsed.Error.Code != "" || parsed.Error.Message != "") {
		apiErr.Code = parsed.Error.Code
		apiErr.Message = parsed.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// Details returns the structured payload surfaced in error envelopes.
func (e *APIError) Details() map[string]any {
	details := map[string]any{}
	if e.Code != "" {
		details["code"] = e.Code
	}
	if e.Body != "" {
		var raw any
		if err := json.Unmarshal([]byte(e.Body), &raw); err == nil {
			details["body"] = raw
		} else {
			details["body"] = e.Body
		}
	}
	return details
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRetryable reports whether a status code indicates a transient failure
// worth retrying (throttling and gateway-side errors).
func IsRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusInternalServerError ||
		statusCode == http.StatusBadGateway ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout
}

// IsRateLimited reports whether a status code indicates throttling.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}
