// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// teams.go - Microsoft Teams actions.

package actions

import (
	"context"
	"net/http"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerTeamsActions(r *Registry) {
	r.Register("teams_list_joined", teamsListJoined)
	r.Register("teams_list_channels", teamsListChannels)
	r.Register("teams_send_channel_message", teamsSendChannelMessage)
	r.Register("teams_list_chats", teamsListChats)
}

func teamsListJoined(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/me/joinedTeams"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func teamsListChannels(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	teamID, err := inv.Params.RequiredString("team_id")
	if err != nil {
		return nil, err
	}

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/teams/"+teamID+"/channels"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func teamsSendChannelMessage(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	teamID, err := inv.Params.RequiredString("team_id")
	if err != nil {
		return nil, err
	}
	channelID, err := inv.Params.RequiredString("channel_id")
	if err != nil {
		return nil, err
	}
	content, err := inv.Params.RequiredString("message")
	if err != nil {
		return nil, err
	}

	contentType := "text"
	if inv.Params.BoolOr("html", false) {
		contentType = "html"
	}
	payload := map[string]any{
		"body": map[string]any{"contentType": contentType, "content": content},
	}

	path := "/teams/" + teamID + "/channels/" + channelID + "/messages"
	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL(path), inv.graphScopes(), payload)
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_message_sent", data), nil
}

func teamsListChats(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/me/chats"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
