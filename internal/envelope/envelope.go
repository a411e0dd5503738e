// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// envelope.go - The uniform result envelope every action handler returns.
//
// Downstream payloads are opaque JSON documents owned by the upstream APIs;
// the envelope only adds a consistent status, optional message, and paging
// metadata around them. All handlers share this one shape.

package envelope

import "net/http"

// Envelope is the uniform result of an action invocation.
type Envelope struct {
	Status         string `json:"status"`
	Data           any    `json:"data,omitempty"`
	Message        string `json:"message,omitempty"`
	HTTPStatus     int    `json:"http_status,omitempty"`
	Details        any    `json:"details,omitempty"`
	TotalRetrieved int    `json:"total_retrieved,omitempty"`
	PagesProcessed int    `json:"pages_processed,omitempty"`

	// Truncated is set when a pagination cap stopped the walk while the
	// server still reported more data. Consumers must not assume the
	// data set is complete when this is true.
	Truncated bool `json:"truncated,omitempty"`
}

// StatusSuccess is the default success status.
const StatusSuccess = "success"

// StatusError is the default error status.
const StatusError = "error"

// Success builds a success envelope around a data payload.
func Success(data any) *Envelope {
	return &Envelope{Status: StatusSuccess, Data: data}
}

// SuccessStatus builds a success envelope with a custom status string,
// used by actions whose callers match on specific status values.
func SuccessStatus(status string, data any) *Envelope {
	return &Envelope{Status: status, Data: data}
}

// Paged builds a success envelope with pagination metadata.
func Paged(items any, total, pages int, truncated bool) *Envelope {
	return &Envelope{
		Status:         StatusSuccess,
		Data:           items,
		TotalRetrieved: total,
		PagesProcessed: pages,
		Truncated:      truncated,
	}
}

// Error builds an error envelope with an HTTP status to surface.
func Error(httpStatus int, message string, details any) *Envelope {
	return &Envelope{
		Status:     StatusError,
		Message:    message,
		HTTPStatus: clampNonSuccess(httpStatus),
		Details:    details,
	}
}

// NotImplemented builds the explicit 501 envelope for unfinished actions.
func NotImplemented(action string) *Envelope {
	return &Envelope{
		Status:     StatusError,
		Message:    "action not implemented: " + action,
		HTTPStatus: http.StatusNotImplemented,
	}
}

// ResponseCode returns the HTTP status code to write for this envelope.
func (e *Envelope) ResponseCode() int {
	if e.HTTPStatus != 0 {
		if e.IsError() {
			return clampNonSuccess(e.HTTPStatus)
		}
		return e.HTTPStatus
	}
	if e.IsError() {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// IsError reports whether the envelope represents a failed invocation.
func (e *Envelope) IsError() bool {
	return e.Status == StatusError
}

// clampNonSuccess forces error envelopes onto a non-2xx status code.
func clampNonSuccess(code int) int {
	if code < http.StatusMultipleChoices {
		return http.StatusBadGateway
	}
	return code
}
