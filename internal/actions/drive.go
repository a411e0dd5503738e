// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// drive.go - OneDrive file actions.
//
// Uploads route through the shared msapi upload path: single PUT under
// 4 MiB, resumable upload session above it.

package actions

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/garridom/m365-gateway/internal/envelope"
)

// downloadSizeCap bounds drive_download_file payloads (base64 in JSON).
const downloadSizeCap = 10 << 20

func registerDriveActions(r *Registry) {
	r.Register("drive_list_children", driveListChildren)
	r.Register("drive_search", driveSearch)
	r.Register("drive_download_file", driveDownloadFile)
	r.Register("drive_upload_file", driveUploadFile)
	r.Register("drive_delete_item", driveDeleteItem)
}

// driveRoot returns the drive path segment: an explicit drive by id, a
// drive resolved by name (drive_name param, then the configured default),
// or the signed-in user's default drive.
func driveRoot(ctx context.Context, inv *Invocation) (string, error) {
	if driveID := inv.Params.StringOr("drive_id", ""); driveID != "" {
		return "/drives/" + driveID, nil
	}
	if name := inv.Params.StringOr("drive_name", inv.Config.DriveName); name != "" {
		driveID, err := resolveDriveID(ctx, inv, name)
		if err != nil {
			return "", err
		}
		return "/drives/" + driveID, nil
	}
	return "/me/drive", nil
}

// resolveDriveID looks a drive up by name among the user's drives.
func resolveDriveID(ctx context.Context, inv *Invocation, name string) (string, error) {
	data, err := inv.Clients.API.DoObject(ctx, http.MethodGet, inv.graphURL("/me/drives"), inv.graphScopes(), nil)
	if err != nil {
		return "", err
	}
	drives, _ := data["value"].([]any)
	for _, entry := range drives {
		drive, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		driveName, _ := drive["name"].(string)
		if !strings.EqualFold(driveName, name) {
			continue
		}
		if id, _ := drive["id"].(string); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no drive named %q", name)
}

func driveListChildren(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	root, err := driveRoot(ctx, inv)
	if err != nil {
		return nil, err
	}

	path := root + "/root/children"
	if itemID := inv.Params.StringOr("item_id", ""); itemID != "" {
		path = root + "/items/" + itemID + "/children"
	} else if folder := inv.Params.StringOr("folder_path", ""); folder != "" {
		path = root + "/root:/" + folder + ":/children"
	}

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func driveSearch(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	term, err := inv.Params.RequiredString("query")
	if err != nil {
		return nil, err
	}
	root, err := driveRoot(ctx, inv)
	if err != nil {
		return nil, err
	}

	path := root + "/root/search(q='" + url.PathEscape(term) + "')"
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func driveDownloadFile(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	root, err := driveRoot(ctx, inv)
	if err != nil {
		return nil, err
	}

	var path string
	if itemID := inv.Params.StringOr("item_id", ""); itemID != "" {
		path = root + "/items/" + itemID + "/content"
	} else {
		filePath, err := inv.Params.RequiredString("file_path")
		if err != nil {
			return nil, err
		}
		path = root + "/root:/" + filePath + ":/content"
	}

	data, err := inv.Clients.API.Download(ctx, inv.graphURL(path), inv.graphScopes(), downloadSizeCap)
	if err != nil {
		return nil, err
	}
	return envelope.Success(map[string]any{
		"content_base64": base64.StdEncoding.EncodeToString(data),
		"size":           len(data),
	}), nil
}

func driveUploadFile(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	filePath, err := inv.Params.RequiredString("file_path")
	if err != nil {
		return nil, err
	}
	content, err := inv.Params.RequiredBytes("content_base64")
	if err != nil {
		return nil, err
	}
	conflict := inv.Params.StringOr("conflict_behavior", "rename")
	root, err := driveRoot(ctx, inv)
	if err != nil {
		return nil, err
	}

	itemURL := inv.graphURL(root + "/root:/" + filePath + ":")
	item, err := inv.Clients.API.UploadFile(ctx, itemURL, inv.graphScopes(), content, conflict)
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_file_uploaded", item), nil
}

func driveDeleteItem(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	itemID, err := inv.Params.RequiredString("item_id")
	if err != nil {
		return nil, err
	}
	root, err := driveRoot(ctx, inv)
	if err != nil {
		return nil, err
	}

	if _, err := inv.Clients.API.DoJSON(ctx, http.MethodDelete, inv.graphURL(root+"/items/"+itemID), inv.graphScopes(), nil); err != nil {
		return nil, err
	}
	return envelope.Success(map[string]any{"item_id": itemID, "deleted": true}), nil
}
