// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredString(t *testing.T) {
	p := Params{"name": "hello", "empty": "", "num": 3.0}

	got, err := p.RequiredString("name")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = p.RequiredString("missing")
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = p.RequiredString("empty")
	assert.ErrorIs(t, err, ErrMissingParam)

	_, err = p.RequiredString("num")
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestIntOrAcceptsJSONNumbers(t *testing.T) {
	// JSON decoding yields float64 for numbers.
	p := Params{"float": 7.0, "int": 9, "bad": "nope"}

	assert.Equal(t, 7, p.IntOr("float", 1))
	assert.Equal(t, 9, p.IntOr("int", 1))
	assert.Equal(t, 1, p.IntOr("bad", 1))
	assert.Equal(t, 1, p.IntOr("missing", 1))
}

func TestStringSlice(t *testing.T) {
	p := Params{
		"mixed": []any{"a", "b", 3.0},
		"bare":  "solo",
	}

	assert.Equal(t, []string{"a", "b"}, p.StringSlice("mixed"))
	assert.Nil(t, p.StringSlice("bare"))
	assert.Nil(t, p.StringSlice("missing"))
}

func TestRequiredBytes(t *testing.T) {
	p := Params{"good": "aGVsbG8=", "bad": "!!not base64!!"}

	data, err := p.RequiredBytes("good")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = p.RequiredBytes("bad")
	assert.Error(t, err)

	_, err = p.RequiredBytes("missing")
	assert.ErrorIs(t, err, ErrMissingParam)
}
