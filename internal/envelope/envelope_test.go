// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package envelope

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccess(t *testing.T) {
	e := Success(map[string]any{"id": "1"})
	assert.Equal(t, StatusSuccess, e.Status)
	assert.False(t, e.IsError())
	assert.Equal(t, http.StatusOK, e.ResponseCode())
}

func TestSuccessStatus(t *testing.T) {
	e := SuccessStatus("success_managed_identity_profile_fetched", map[string]any{"id": "app"})
	assert.Equal(t, "success_managed_identity_profile_fetched", e.Status)
	assert.False(t, e.IsError())
	assert.Equal(t, http.StatusOK, e.ResponseCode())
}

func TestPaged(t *testing.T) {
	items := []any{"a", "b", "c"}
	e := Paged(items, 3, 2, true)
	assert.Equal(t, 3, e.TotalRetrieved)
	assert.Equal(t, 2, e.PagesProcessed)
	assert.True(t, e.Truncated)
	assert.Equal(t, http.StatusOK, e.ResponseCode())
}

func TestErrorEnvelope(t *testing.T) {
	e := Error(http.StatusNotFound, "item not found", map[string]any{"code": "itemNotFound"})
	assert.True(t, e.IsError())
	assert.Equal(t, http.StatusNotFound, e.ResponseCode())
	assert.Equal(t, "item not found", e.Message)
}

func TestErrorEnvelopeClampsSuccessCodes(t *testing.T) {
	// A downstream error that somehow carries a 2xx code must not be
	// reported as success.
	e := Error(http.StatusOK, "downstream lied", nil)
	assert.Equal(t, http.StatusBadGateway, e.ResponseCode())

	e = Error(0, "no code available", nil)
	assert.Equal(t, http.StatusBadGateway, e.ResponseCode())
}

func TestErrorEnvelopeWithoutCode(t *testing.T) {
	e := &Envelope{Status: StatusError, Message: "boom"}
	assert.Equal(t, http.StatusInternalServerError, e.ResponseCode())
}

func TestNotImplemented(t *testing.T) {
	e := NotImplemented("flow_trigger")
	assert.True(t, e.IsError())
	assert.Equal(t, http.StatusNotImplemented, e.ResponseCode())
	assert.Contains(t, e.Message, "flow_trigger")
}
