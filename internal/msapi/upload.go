// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// upload.go - OneDrive/SharePoint file upload with resumable sessions.
//
// Payloads under 4 MiB go up as a single PUT. Anything larger goes through
// a Graph upload session: sequential 5 MiB Content-Range chunks PUT against
// the pre-authorized session URL until the final chunk response carries the
// completed item descriptor. Transient chunk failures are retried with
// exponential backoff before the upload is aborted and the session
// cancelled.

package msapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/garridom/m365-gateway/internal/logging"
)

const (
	// SimpleUploadLimit is the size at or above which an upload session is used.
	SimpleUploadLimit = 4 << 20
	// UploadChunkSize is the byte-range size PUT per session chunk.
	UploadChunkSize = 5 << 20

	uploadChunkAttempts = 3
	uploadRetryBaseWait = 500 * time.Millisecond
)

// ConflictBehaviors are the accepted values for the conflict resolution policy.
var ConflictBehaviors = map[string]bool{"rename": true, "replace": true, "fail": true}

// UploadFile uploads content to the drive item addressed by itemURL (the
// item path without a trailing /content segment), applying the given
// conflict-resolution policy. It returns the created item descriptor.
func (c *Client) UploadFile(ctx context.Context, itemURL string, scopes []string, content []byte, conflictBehavior string) (map[string]any, error) {
	if conflictBehavior == "" {
		conflictBehavior = "rename"
	}
	if !ConflictBehaviors[conflictBehavior] {
		return nil, fmt.Errorf("invalid conflict behavior %q (want rename, replace, or fail)", conflictBehavior)
	}

	if len(content) < SimpleUploadLimit {
		return c.simpleUpload(ctx, itemURL, scopes, content, conflictBehavior)
	}
	return c.sessionUpload(ctx, itemURL, scopes, content, conflictBehavior)
}

func (c *Client) simpleUpload(ctx context.Context, itemURL string, scopes []string, content []byte, conflictBehavior string) (map[string]any, error) {
	url := itemURL + "/content?@microsoft.graph.conflictBehavior=" + conflictBehavior
	resp, err := c.Do(ctx, http.MethodPut, url, scopes, bytes.NewReader(content), map[string]string{
		"Content-Type": "application/octet-stream",
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, NewAPIError(resp.StatusCode, body)
	}

	var item map[string]any
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	logging.APILogger.Info("Simple upload completed", "bytes", len(content), "item_id", item["id"])
	return item, nil
}

func (c *Client) sessionUpload(ctx context.Context, itemURL string, scopes []string, content []byte, conflictBehavior string) (map[string]any, error) {
	session, err := c.DoObject(ctx, http.MethodPost, itemURL+"/createUploadSession", scopes, map[string]any{
		"item": map[string]any{
			"@microsoft.graph.conflictBehavior": conflictBehavior,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create upload session: %w", err)
	}
	uploadURL, _ := session["uploadUrl"].(string)
	if uploadURL == "" {
		return nil, fmt.Errorf("upload session response missing uploadUrl")
	}

	total := len(content)
	chunks := (total + UploadChunkSize - 1) / UploadChunkSize
	logging.APILogger.Info("Starting session upload", "bytes", total, "chunks", chunks)

	for offset := 0; offset < total; offset += UploadChunkSize {
		end := offset + UploadChunkSize
		if end > total {
			end = total
		}

		item, err := c.putChunk(ctx, uploadURL, content[offset:end], offset, end-1, total)
		if err != nil {
			c.cancelUploadSession(ctx, uploadURL)
			return nil, fmt.Errorf("upload chunk %d-%d/%d: %w", offset, end-1, total, err)
		}
		if item != nil {
			logging.APILogger.Info("Session upload completed", "bytes", total, "chunks", chunks, "item_id", item["id"])
			return item, nil
		}
	}

	c.cancelUploadSession(ctx, uploadURL)
	return nil, fmt.Errorf("upload session ended without a completed item descriptor")
}

// putChunk uploads one byte range. It returns the completed item descriptor
// when the server recognizes the final chunk (200/201 with an item body),
// nil when more chunks are expected (202), retrying transient failures.
func (c *Client) putChunk(ctx context.Context, uploadURL string, chunk []byte, first, last, total int) (map[string]any, error) {
	var lastErr error

	for attempt := 1; attempt <= uploadChunkAttempts; attempt++ {
		if attempt > 1 {
			wait := uploadRetryBaseWait * time.Duration(1<<(attempt-2))
			logging.APILogger.Warn("Retrying upload chunk", "attempt", attempt, "range_start", first, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		item, retryable, err := c.tryPutChunk(ctx, uploadURL, chunk, first, last, total)
		if err == nil {
			return item, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) tryPutChunk(ctx context.Context, uploadURL string, chunk []byte, first, last, total int) (item map[string]any, retryable bool, err error) {
	// The session URL is pre-authorized; no bearer token is attached.
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(chunk))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Length", strconv.Itoa(len(chunk)))
	req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", first, last, total))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read chunk response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return nil, false, nil
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var completed map[string]any
		if err := json.Unmarshal(body, &completed); err != nil {
			return nil, false, fmt.Errorf("decode completed item: %w", err)
		}
		if _, ok := completed["id"]; !ok {
			return nil, false, fmt.Errorf("final chunk response carries no item id")
		}
		return completed, false, nil
	default:
		return nil, IsRetryable(resp.StatusCode), NewAPIError(resp.StatusCode, body)
	}
}

// cancelUploadSession deletes an aborted session server-side, best effort.
func (c *Client) cancelUploadSession(ctx context.Context, uploadURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, uploadURL, nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APILogger.Warn("Failed to cancel upload session", "error", err)
		return
	}
	resp.Body.Close()
}
