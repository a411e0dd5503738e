// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// insights.go - Graph insights actions (recently used and trending documents).

package actions

import (
	"context"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerInsightsActions(r *Registry) {
	r.Register("insights_used_documents", insightsUsedDocuments)
	r.Register("insights_trending", insightsTrending)
}

func insightsUsedDocuments(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/me/insights/used"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func insightsTrending(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/me/insights/trending"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
