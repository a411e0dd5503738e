// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// profile.go - User profile actions.
//
// profile_get goes through the typed Graph SDK client; the rest are raw
// pass-through calls. obtener_perfil_app_test is the managed-identity smoke
// test kept under its historical name: callers match on its status string.

package actions

import (
	"context"
	"fmt"
	"net/http"

	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/logging"
	"github.com/garridom/m365-gateway/internal/msapi"
	"github.com/garridom/m365-gateway/internal/msauth"
)

func registerProfileActions(r *Registry) {
	r.Register("profile_get", profileGet)
	r.Register("profile_get_user", profileGetUser)
	r.Register("obtener_perfil_app_test", profileAppTest)
}

// profileGet fetches the signed-in user's profile with the Graph SDK.
func profileGet(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Clients.Graph == nil {
		return nil, fmt.Errorf("graph SDK client not configured")
	}

	user, err := inv.Clients.Graph.Me().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	data := map[string]any{}
	setIfPresent(data, "id", user.GetId())
	setIfPresent(data, "displayName", user.GetDisplayName())
	setIfPresent(data, "mail", user.GetMail())
	setIfPresent(data, "userPrincipalName", user.GetUserPrincipalName())
	setIfPresent(data, "jobTitle", user.GetJobTitle())
	setIfPresent(data, "officeLocation", user.GetOfficeLocation())
	setIfPresent(data, "mobilePhone", user.GetMobilePhone())
	setIfPresent(data, "preferredLanguage", user.GetPreferredLanguage())
	return envelope.Success(data), nil
}

func setIfPresent(data map[string]any, key string, value *string) {
	if value != nil {
		data[key] = *value
	}
}

// profileGetUser fetches another user's profile by id or principal name.
func profileGetUser(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	userID, err := inv.Params.RequiredString("user_id")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodGet, inv.graphURL("/users/"+userID), inv.graphScopes(), nil)
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}

// profileAppTest verifies the gateway identity end to end: acquire a token
// (managed identity when enabled) and fetch a profile with it.
func profileAppTest(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	client := inv.Clients.API
	if inv.Config.UseManagedIdentity {
		cred, err := msauth.NewManagedIdentityCredential(inv.Config)
		if err != nil {
			return nil, err
		}
		client = msapi.New(cred)
	}

	target := "/me"
	if inv.Config.ProfileUserID != "" {
		target = "/users/" + inv.Config.ProfileUserID
	}

	data, err := client.DoObject(ctx, http.MethodGet, inv.graphURL(target), inv.graphScopes(), nil)
	if err != nil {
		return nil, err
	}

	logging.ActionsLogger.Info("Managed identity profile check succeeded", "invocation_id", inv.ID)
	return envelope.SuccessStatus("success_managed_identity_profile_fetched", data), nil
}
