// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package msapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunkRecord struct {
	contentRange string
	size         int
}

// uploadServer mocks the createUploadSession + chunk PUT protocol and
// records every Content-Range it sees.
func uploadServer(t *testing.T, failFirstChunkTimes int) (*httptest.Server, *[]chunkRecord, *bool) {
	t.Helper()
	var records []chunkRecord
	var cancelled bool
	failures := failFirstChunkTimes

	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/createUploadSession"):
			json.NewEncoder(w).Encode(map[string]any{"uploadUrl": ts.URL + "/session"})

		case r.URL.Path == "/session" && r.Method == http.MethodDelete:
			cancelled = true
			w.WriteHeader(http.StatusNoContent)

		case r.URL.Path == "/session" && r.Method == http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			cr := r.Header.Get("Content-Range")
			records = append(records, chunkRecord{contentRange: cr, size: len(body)})

			if failures > 0 {
				failures--
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}

			// Final chunk ends at total-1.
			var first, last, total int
			fmt.Sscanf(cr, "bytes %d-%d/%d", &first, &last, &total)
			if last == total-1 {
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(map[string]any{"id": "item-123", "size": total})
				return
			}
			w.WriteHeader(http.StatusAccepted)
			json.NewEncoder(w).Encode(map[string]any{"nextExpectedRanges": []string{fmt.Sprintf("%d-", last+1)}})

		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return ts, &records, &cancelled
}

func TestUploadFileSmallPayloadSinglePut(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotSize int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotSize = r.Method, r.URL.Path, len(body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "small-item"})
	}))
	defer ts.Close()

	client := newTestClient("tok")
	content := make([]byte, 1024)
	item, err := client.UploadFile(context.Background(), ts.URL+"/drive/root:/doc.bin:", graphScopes, content, "replace")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/drive/root:/doc.bin:/content", gotPath)
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.Equal(t, 1024, gotSize)
	assert.Equal(t, "small-item", item["id"])
}

func TestUploadFileLargePayloadChunked(t *testing.T) {
	ts, records, cancelled := uploadServer(t, 0)
	defer ts.Close()

	// 12 MiB payload: expect ceil(12/5) = 3 chunks.
	total := 12 << 20
	content := make([]byte, total)

	client := newTestClient("tok")
	item, err := client.UploadFile(context.Background(), ts.URL+"/drive/root:/big.bin:", graphScopes, content, "rename")
	require.NoError(t, err)
	assert.Equal(t, "item-123", item["id"])
	assert.False(t, *cancelled)

	require.Len(t, *records, 3)

	// Ranges must be contiguous, non-overlapping, and sum to the total.
	next := 0
	sum := 0
	for _, rec := range *records {
		var first, last, rangeTotal int
		_, err := fmt.Sscanf(rec.contentRange, "bytes %d-%d/%d", &first, &last, &rangeTotal)
		require.NoError(t, err)
		assert.Equal(t, next, first)
		assert.Equal(t, total, rangeTotal)
		assert.Equal(t, last-first+1, rec.size)
		next = last + 1
		sum += rec.size
	}
	assert.Equal(t, total, sum)
	assert.Equal(t, UploadChunkSize, (*records)[0].size)
}

func TestUploadFileChunkRetriesTransientFailure(t *testing.T) {
	ts, records, cancelled := uploadServer(t, 2)
	defer ts.Close()

	total := 6 << 20
	content := make([]byte, total)

	client := newTestClient("tok")
	item, err := client.UploadFile(context.Background(), ts.URL+"/drive/root:/retry.bin:", graphScopes, content, "rename")
	require.NoError(t, err)
	assert.Equal(t, "item-123", item["id"])
	assert.False(t, *cancelled)

	// First chunk attempted 3 times (2 failures + success), second chunk once.
	assert.Len(t, *records, 4)
}

func TestUploadFileChunkFailureAbortsAndCancelsSession(t *testing.T) {
	ts, records, cancelled := uploadServer(t, uploadChunkAttempts)
	defer ts.Close()

	total := 6 << 20
	content := make([]byte, total)

	client := newTestClient("tok")
	_, err := client.UploadFile(context.Background(), ts.URL+"/drive/root:/abort.bin:", graphScopes, content, "rename")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.True(t, *cancelled)
	assert.Len(t, *records, uploadChunkAttempts)
}

func TestUploadFileInvalidConflictBehavior(t *testing.T) {
	client := newTestClient("tok")
	_, err := client.UploadFile(context.Background(), "http://127.0.0.1:1/item", graphScopes, []byte("x"), "overwrite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid conflict behavior")
}
