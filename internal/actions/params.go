// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// params.go - Typed access to the untyped action params object.
//
// Action params arrive as a decoded JSON object; these helpers pull out
// typed values with defaults, and flag missing required parameters with a
// sentinel the HTTP layer maps to a 400 response.

package actions

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMissingParam marks a required parameter that was absent or empty.
var ErrMissingParam = errors.New("missing required parameter")

// Params is the decoded params object of an action request.
type Params map[string]any

// RequiredString returns the named string parameter or ErrMissingParam.
func (p Params) RequiredString(key string) (string, error) {
	if s, ok := p[key].(string); ok && s != "" {
		return s, nil
	}
	return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
}

// StringOr returns the named string parameter or a default.
func (p Params) StringOr(key, defaultValue string) string {
	if s, ok := p[key].(string); ok && s != "" {
		return s
	}
	return defaultValue
}

// IntOr returns the named integer parameter or a default. JSON numbers
// decode as float64; both forms are accepted.
func (p Params) IntOr(key string, defaultValue int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// BoolOr returns the named boolean parameter or a default.
func (p Params) BoolOr(key string, defaultValue bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return defaultValue
}

// ObjectOr returns the named object parameter or a default.
func (p Params) ObjectOr(key string, defaultValue map[string]any) map[string]any {
	if obj, ok := p[key].(map[string]any); ok {
		return obj
	}
	return defaultValue
}

// StringSlice returns the named parameter as a string slice. Accepts a
// JSON array of strings; non-string elements are skipped.
func (p Params) StringSlice(key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RequiredBytes decodes the named base64-encoded parameter.
func (p Params) RequiredBytes(key string) ([]byte, error) {
	encoded, err := p.RequiredString(key)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("parameter %s is not valid base64: %w", key, err)
	}
	return data, nil
}
