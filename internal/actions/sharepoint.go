// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// sharepoint.go - SharePoint site and list actions, including the memory
// store backed by the configured SharePoint list.

package actions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerSharePointActions(r *Registry) {
	r.Register("sharepoint_get_site", sharepointGetSite)
	r.Register("sharepoint_list_items", sharepointListItems)
	r.Register("sharepoint_add_list_item", sharepointAddListItem)
	r.Register("memory_save", memorySave)
	r.Register("memory_list", memoryList)
}

func sharepointGetSite(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	siteID, err := inv.Params.RequiredString("site_id")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodGet, inv.graphURL("/sites/"+siteID), inv.graphScopes(), nil)
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}

func sharepointListItems(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	siteID, err := inv.Params.RequiredString("site_id")
	if err != nil {
		return nil, err
	}
	listName, err := inv.Params.RequiredString("list")
	if err != nil {
		return nil, err
	}

	query := inv.listQuery()
	query.Set("$expand", "fields")
	path := "/sites/" + siteID + "/lists/" + url.PathEscape(listName) + "/items"

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), query, inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func sharepointAddListItem(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	siteID, err := inv.Params.RequiredString("site_id")
	if err != nil {
		return nil, err
	}
	listName, err := inv.Params.RequiredString("list")
	if err != nil {
		return nil, err
	}
	fields := inv.Params.ObjectOr("fields", nil)
	if fields == nil {
		return nil, fmt.Errorf("%w: fields", ErrMissingParam)
	}

	path := "/sites/" + siteID + "/lists/" + url.PathEscape(listName) + "/items"
	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL(path), inv.graphScopes(), map[string]any{"fields": fields})
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_item_created", data), nil
}

// memorySave appends a key/value entry to the configured memory list.
func memorySave(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Config.MemorySiteID == "" {
		return nil, fmt.Errorf("memory list not configured (MEMORY_SITE_ID)")
	}
	key, err := inv.Params.RequiredString("key")
	if err != nil {
		return nil, err
	}
	value, err := inv.Params.RequiredString("value")
	if err != nil {
		return nil, err
	}

	path := "/sites/" + inv.Config.MemorySiteID + "/lists/" + url.PathEscape(inv.Config.MemoryListName) + "/items"
	payload := map[string]any{
		"fields": map[string]any{
			"Title":      key,
			"Value":      value,
			"RecordedAt": time.Now().UTC().Format(time.RFC3339),
		},
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL(path), inv.graphScopes(), payload)
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_memory_saved", data), nil
}

func memoryList(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Config.MemorySiteID == "" {
		return nil, fmt.Errorf("memory list not configured (MEMORY_SITE_ID)")
	}

	query := inv.listQuery()
	query.Set("$expand", "fields")
	path := "/sites/" + inv.Config.MemorySiteID + "/lists/" + url.PathEscape(inv.Config.MemoryListName) + "/items"

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), query, inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
