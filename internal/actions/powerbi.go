// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// powerbi.go - Power BI REST API actions. The Power BI API paginates the
// same way Graph does (@odata.nextLink), so listings go through the shared
// page collector with the Power BI base URL and scope.

package actions

import (
	"context"
	"net/http"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerPowerBIActions(r *Registry) {
	r.Register("powerbi_list_workspaces", powerBIListWorkspaces)
	r.Register("powerbi_list_datasets", powerBIListDatasets)
	r.Register("powerbi_refresh_dataset", powerBIRefreshDataset)
	r.Register("powerbi_list_reports", powerBIListReports)
}

func (inv *Invocation) powerBIURL(path string) string {
	return inv.Config.PowerBIBaseURL + path
}

func powerBIListWorkspaces(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.powerBIURL("/groups"), inv.listQuery(), inv.powerBIScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func powerBIListDatasets(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	path := "/datasets"
	if workspaceID := inv.Params.StringOr("workspace_id", ""); workspaceID != "" {
		path = "/groups/" + workspaceID + "/datasets"
	}
	result, err := inv.Clients.API.CollectPages(ctx, inv.powerBIURL(path), inv.listQuery(), inv.powerBIScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func powerBIRefreshDataset(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	datasetID, err := inv.Params.RequiredString("dataset_id")
	if err != nil {
		return nil, err
	}

	path := "/datasets/" + datasetID + "/refreshes"
	if workspaceID := inv.Params.StringOr("workspace_id", ""); workspaceID != "" {
		path = "/groups/" + workspaceID + path
	}

	// A successful refresh request returns 202 with an empty body.
	if _, err := inv.Clients.API.DoJSON(ctx, http.MethodPost, inv.powerBIURL(path), inv.powerBIScopes(), map[string]any{"notifyOption": "NoNotification"}); err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_refresh_requested", map[string]any{"datasetId": datasetID}), nil
}

func powerBIListReports(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	path := "/reports"
	if workspaceID := inv.Params.StringOr("workspace_id", ""); workspaceID != "" {
		path = "/groups/" + workspaceID + "/reports"
	}
	result, err := inv.Clients.API.CollectPages(ctx, inv.powerBIURL(path), inv.listQuery(), inv.powerBIScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
