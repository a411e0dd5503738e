// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// azure.go - Azure Resource Manager actions. ARM uses a bare "nextLink"
// continuation key and requires an api-version query parameter; both are
// handled by the shared page collector.

package actions

import (
	"context"
	"net/url"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerAzureActions(r *Registry) {
	r.Register("azure_list_subscriptions", azureListSubscriptions)
	r.Register("azure_list_resource_groups", azureListResourceGroups)
	r.Register("azure_list_resources", azureListResources)
}

func (inv *Invocation) armURL(path string) string {
	return inv.Config.ARMBaseURL + path
}

// armQuery builds the ARM query, carrying api-version plus any OData filter.
func (inv *Invocation) armQuery() url.Values {
	query := url.Values{}
	query.Set("api-version", inv.Config.ARMAPIVersion)
	if filter := inv.Params.StringOr("filter", ""); filter != "" {
		query.Set("$filter", filter)
	}
	return query
}

func azureListSubscriptions(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.armURL("/subscriptions"), inv.armQuery(), inv.armScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func azureListResourceGroups(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	subscriptionID, err := inv.Params.RequiredString("subscription_id")
	if err != nil {
		return nil, err
	}

	path := "/subscriptions/" + subscriptionID + "/resourcegroups"
	result, err := inv.Clients.API.CollectPages(ctx, inv.armURL(path), inv.armQuery(), inv.armScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func azureListResources(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	subscriptionID, err := inv.Params.RequiredString("subscription_id")
	if err != nil {
		return nil, err
	}

	path := "/subscriptions/" + subscriptionID
	if resourceGroup := inv.Params.StringOr("resource_group", ""); resourceGroup != "" {
		path += "/resourceGroups/" + resourceGroup
	}
	path += "/resources"

	result, err := inv.Clients.API.CollectPages(ctx, inv.armURL(path), inv.armQuery(), inv.armScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
