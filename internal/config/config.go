// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// config.go - Environment-driven configuration for the actions gateway.
//
// All downstream endpoint URLs, API versions, and credential settings are
// read once at startup and injected into the clients that need them. Base
// URLs are configurable so tests can point the gateway at mock servers.

package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/garridom/m365-gateway/internal/logging"
)

// Config holds the complete gateway configuration.
type Config struct {
	HTTPAddr string

	// Microsoft identity
	TenantID                string
	ClientID                string
	ClientSecret            string
	UseManagedIdentity      bool
	ManagedIdentityClientID string

	// Downstream API endpoints and scopes
	GraphBaseURL   string
	GraphScope     string
	ARMBaseURL     string
	ARMScope       string
	ARMAPIVersion  string
	PowerBIBaseURL string
	PowerBIScope   string
	FlowBaseURL    string
	FlowScope      string

	// Azure OpenAI
	OpenAIEndpoint   string
	OpenAIDeployment string
	OpenAIAPIVersion string
	OpenAIScope      string

	// GitHub
	GitHubToken   string
	GitHubBaseURL string

	// Feature defaults
	DriveName      string
	MemoryListName string
	MemorySiteID   string
	ProfileUserID  string

	// Paging and timeouts
	DefaultPageSize int
	MaxItems        int
	MaxPages        int
	RequestTimeout  time.Duration
}

// ErrMissingCredentials indicates no usable identity configuration was found.
var ErrMissingCredentials = errors.New("config: no tenant/client credentials and managed identity not enabled")

// Load reads the gateway configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		TenantID:                os.Getenv("AZURE_TENANT_ID"),
		ClientID:                os.Getenv("AZURE_CLIENT_ID"),
		ClientSecret:            os.Getenv("AZURE_CLIENT_SECRET"),
		UseManagedIdentity:      getEnvBool("AZURE_USE_MANAGED_IDENTITY", false),
		ManagedIdentityClientID: os.Getenv("AZURE_MANAGED_IDENTITY_CLIENT_ID"),

		GraphBaseURL:  getEnv("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		GraphScope:    getEnv("GRAPH_SCOPE", "https://graph.microsoft.com/.default"),
		ARMBaseURL:    getEnv("ARM_BASE_URL", "https://management.azure.com"),
		ARMScope:      getEnv("ARM_SCOPE", "https://management.azure.com/.default"),
		ARMAPIVersion: getEnv("ARM_API_VERSION", "2021-04-01"),

		PowerBIBaseURL: getEnv("POWERBI_BASE_URL", "https://api.powerbi.com/v1.0/myorg"),
		PowerBIScope:   getEnv("POWERBI_SCOPE", "https://analysis.windows.net/powerbi/api/.default"),
		FlowBaseURL:    getEnv("FLOW_BASE_URL", "https://api.flow.microsoft.com"),
		FlowScope:      getEnv("FLOW_SCOPE", "https://service.flow.microsoft.com/.default"),

		OpenAIEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		OpenAIDeployment: os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
		OpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		OpenAIScope:      getEnv("AZURE_OPENAI_SCOPE", "https://cognitiveservices.azure.com/.default"),

		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubBaseURL: os.Getenv("GITHUB_BASE_URL"),

		DriveName:      os.Getenv("DRIVE_NAME"),
		MemoryListName: getEnv("MEMORY_LIST_NAME", "Memoria"),
		MemorySiteID:   os.Getenv("MEMORY_SITE_ID"),
		ProfileUserID:  os.Getenv("PROFILE_USER_ID"),

		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 50),
		MaxItems:        getEnvInt("MAX_ITEMS", 500),
		MaxPages:        getEnvInt("MAX_PAGES", 20),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
	}

	logging.ConfigLogger.Debug("Configuration loaded",
		"http_addr", cfg.HTTPAddr,
		"tenant_id_set", cfg.TenantID != "",
		"client_id_set", cfg.ClientID != "",
		"managed_identity", cfg.UseManagedIdentity,
		"graph_base_url", cfg.GraphBaseURL,
		"max_items", cfg.MaxItems,
		"max_pages", cfg.MaxPages)

	return cfg, nil
}

// HasClientSecret reports whether client-secret credentials are fully configured.
func (c *Config) HasClientSecret() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		logging.ConfigLogger.Warn("Invalid integer in environment, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		logging.ConfigLogger.Warn("Invalid boolean in environment, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logging.ConfigLogger.Warn("Invalid duration in environment, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}
