// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// flow.go - Power Automate (flow service) actions.

package actions

import (
	"context"
	"net/url"

	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/msapi"
)

const flowAPIVersion = "2016-11-01"

func registerFlowActions(r *Registry) {
	r.Register("flow_list_environments", flowListEnvironments)
	r.Register("flow_list_flows", flowListFlows)
	r.Register("flow_trigger", flowTrigger)
}

func (inv *Invocation) flowURL(path string) string {
	return inv.Config.FlowBaseURL + "/providers/Microsoft.ProcessSimple" + path
}

func (inv *Invocation) flowScopes() []string {
	return []string{inv.Config.FlowScope}
}

// flowQuery carries the api-version the flow service requires on every call.
func flowQuery() url.Values {
	query := url.Values{}
	query.Set("api-version", flowAPIVersion)
	return query
}

func flowListEnvironments(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.flowURL("/environments"), flowQuery(), inv.flowScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func flowListFlows(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	environmentID, err := inv.Params.RequiredString("environment_id")
	if err != nil {
		return nil, err
	}

	path := "/environments/" + environmentID + "/flows"
	result, err := inv.Clients.API.CollectPages(ctx, inv.flowURL(path), flowQuery(), inv.flowScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

// flowTrigger is reserved. Invoking a flow requires its HTTP trigger URL,
// which the management API does not expose without the flow's callback
// connection; until that lookup exists the action reports as unimplemented.
func flowTrigger(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	return nil, msapi.ErrNotImplemented
}
