// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// credential.go - Microsoft identity credential construction.
//
// The gateway never implements token protocol details itself; it builds one
// azidentity credential at startup and injects it into every client that
// needs bearer tokens. Selection order: managed identity when explicitly
// enabled, client secret when tenant/client/secret are configured, and
// DefaultAzureCredential as the fallback for local development.

package msauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/garridom/m365-gateway/internal/config"
	"github.com/garridom/m365-gateway/internal/logging"
)

// ErrTokenAcquisition wraps any failure to obtain a bearer token. The HTTP
// layer maps it to a 500 with a generic message.
var ErrTokenAcquisition = errors.New("msauth: token acquisition failed")

// NewCredential builds the process-wide token credential from configuration.
func NewCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	switch {
	case cfg.UseManagedIdentity:
		return NewManagedIdentityCredential(cfg)
	case cfg.HasClientSecret():
		logging.AuthLogger.Info("Using client secret credential", "tenant_id", cfg.TenantID)
		cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("create client secret credential: %w", err)
		}
		return cred, nil
	default:
		logging.AuthLogger.Info("Using default Azure credential chain")
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create default credential: %w", err)
		}
		return cred, nil
	}
}

// NewManagedIdentityCredential builds a managed identity credential,
// optionally bound to a user-assigned identity client ID.
func NewManagedIdentityCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	opts := &azidentity.ManagedIdentityCredentialOptions{}
	if cfg.ManagedIdentityClientID != "" {
		opts.ID = azidentity.ClientID(cfg.ManagedIdentityClientID)
	}
	logging.AuthLogger.Info("Using managed identity credential", "client_id_set", cfg.ManagedIdentityClientID != "")
	cred, err := azidentity.NewManagedIdentityCredential(opts)
	if err != nil {
		return nil, fmt.Errorf("create managed identity credential: %w", err)
	}
	return cred, nil
}

// Token acquires a bearer token for the given scopes, wrapping failures in
// ErrTokenAcquisition so callers can classify them uniformly.
func Token(ctx context.Context, cred azcore.TokenCredential, scopes []string) (string, error) {
	tk, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		logging.AuthLogger.Error("Token acquisition failed", "scopes", scopes, "error", err)
		return "", fmt.Errorf("%w: %v", ErrTokenAcquisition, err)
	}
	return tk.Token, nil
}
