// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package msapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garridom/m365-gateway/internal/msauth"
)

// testCredential implements azcore.TokenCredential with a static token.
type testCredential struct {
	token string
	err   error
}

func (f *testCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: f.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestClient(token string) *Client {
	return New(&testCredential{token: token})
}

var graphScopes = []string{"https://graph.microsoft.com/.default"}

func TestNewDefaultsTimeoutOnOwnClient(t *testing.T) {
	client := newTestClient("tok")
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}

func TestNewLeavesInjectedClientUntouched(t *testing.T) {
	hc := &http.Client{}
	client := New(&testCredential{token: "tok"}, WithHTTPClient(hc))
	assert.Zero(t, hc.Timeout)
	assert.Same(t, hc, client.httpClient)
}

func TestDoInjectsBearerToken(t *testing.T) {
	var gotAuth, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	client := newTestClient("tok-abc")
	resp, err := client.Do(context.Background(), http.MethodGet, ts.URL, graphScopes, nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestDoTokenFailure(t *testing.T) {
	client := New(&testCredential{err: errors.New("no identity available")})
	_, err := client.Do(context.Background(), http.MethodGet, "http://127.0.0.1:1/none", graphScopes, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, msauth.ErrTokenAcquisition)
}

func TestDoJSONStructuredError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"itemNotFound","message":"The resource could not be found."}}`))
	}))
	defer ts.Close()

	client := newTestClient("tok")
	_, err := client.DoJSON(context.Background(), http.MethodGet, ts.URL, graphScopes, nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "itemNotFound", apiErr.Code)
	assert.Equal(t, "The resource could not be found.", apiErr.Message)
}

func TestDoJSONRawTextError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer ts.Close()

	client := newTestClient("tok")
	_, err := client.DoJSON(context.Background(), http.MethodGet, ts.URL, graphScopes, nil)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestDoJSONNoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	client := newTestClient("tok")
	raw, err := client.DoJSON(context.Background(), http.MethodDelete, ts.URL, graphScopes, nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDoJSONSendsPayload(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody = make([]byte, r.ContentLength)
		r.Body.Read(gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"new-item"}`))
	}))
	defer ts.Close()

	client := newTestClient("tok")
	obj, err := client.DoObject(context.Background(), http.MethodPost, ts.URL, graphScopes, map[string]string{"subject": "hello"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"subject":"hello"}`, string(gotBody))
	assert.Equal(t, "new-item", obj["id"])
}

func TestDoRecordsRateLimitBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"tooManyRequests","message":"throttled"}}`))
	}))
	defer ts.Close()

	client := newTestClient("tok")
	_, err := client.DoJSON(context.Background(), http.MethodGet, ts.URL, graphScopes, nil)
	require.Error(t, err)

	// The limiter now refuses immediate calls until the backoff elapses.
	assert.False(t, client.limiter.Allow())
}

func TestDownloadCapsSize(t *testing.T) {
	payload := make([]byte, 1024)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer ts.Close()

	client := newTestClient("tok")
	data, err := client.Download(context.Background(), ts.URL, graphScopes, 100)
	require.NoError(t, err)
	assert.Len(t, data, 100)
}
