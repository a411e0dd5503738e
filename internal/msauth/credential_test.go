// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package msauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garridom/m365-gateway/internal/config"
)

// fakeCredential implements azcore.TokenCredential for tests.
type fakeCredential struct {
	token string
	err   error
}

func (f *fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: f.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestNewCredentialClientSecret(t *testing.T) {
	cfg := &config.Config{
		TenantID:     "9c8f1a7e-0000-0000-0000-000000000000",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	}

	cred, err := NewCredential(cfg)
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestTokenSuccess(t *testing.T) {
	tok, err := Token(context.Background(), &fakeCredential{token: "tok-123"}, []string{"https://graph.microsoft.com/.default"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok)
}

func TestTokenFailureWrapsSentinel(t *testing.T) {
	_, err := Token(context.Background(), &fakeCredential{err: errors.New("identity endpoint unreachable")}, []string{"scope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenAcquisition)
	assert.Contains(t, err.Error(), "identity endpoint unreachable")
}
