// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, "https://graph.microsoft.com/.default", cfg.GraphScope)
	assert.Equal(t, "https://management.azure.com", cfg.ARMBaseURL)
	assert.Equal(t, 50, cfg.DefaultPageSize)
	assert.Equal(t, 500, cfg.MaxItems)
	assert.Equal(t, 20, cfg.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("AZURE_TENANT_ID", "tenant-1")
	t.Setenv("AZURE_CLIENT_ID", "client-1")
	t.Setenv("AZURE_CLIENT_SECRET", "secret-1")
	t.Setenv("GRAPH_BASE_URL", "http://127.0.0.1:9999/v1.0")
	t.Setenv("MAX_PAGES", "5")
	t.Setenv("REQUEST_TIMEOUT", "10s")
	t.Setenv("AZURE_USE_MANAGED_IDENTITY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "tenant-1", cfg.TenantID)
	assert.True(t, cfg.HasClientSecret())
	assert.True(t, cfg.UseManagedIdentity)
	assert.Equal(t, "http://127.0.0.1:9999/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_PAGES", "lots")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("AZURE_USE_MANAGED_IDENTITY", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.MaxPages)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.UseManagedIdentity)
}

func TestHasClientSecret(t *testing.T) {
	cfg := &Config{TenantID: "t", ClientID: "c"}
	assert.False(t, cfg.HasClientSecret())

	cfg.ClientSecret = "s"
	assert.True(t, cfg.HasClientSecret())
}
