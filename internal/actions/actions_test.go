// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

package actions

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"

	"github.com/garridom/m365-gateway/internal/config"
	"github.com/garridom/m365-gateway/internal/msapi"
)

// testCredential implements azcore.TokenCredential with a static token.
type testCredential struct {
	token string
}

func (f *testCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: f.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// newTestInvocation builds an invocation whose pass-through client targets
// baseURL for every Microsoft API family.
func newTestInvocation(baseURL string, params Params) *Invocation {
	cfg := &config.Config{
		GraphBaseURL:    baseURL,
		GraphScope:      "https://graph.microsoft.com/.default",
		ARMBaseURL:      baseURL,
		ARMScope:        "https://management.azure.com/.default",
		ARMAPIVersion:   "2021-04-01",
		PowerBIBaseURL:  baseURL,
		PowerBIScope:    "https://analysis.windows.net/powerbi/api/.default",
		FlowBaseURL:     baseURL,
		FlowScope:       "https://service.flow.microsoft.com/.default",
		DefaultPageSize: 50,
		MaxItems:        500,
		MaxPages:        20,
	}
	cred := &testCredential{token: "tok"}
	return &Invocation{
		ID:      "test-invocation",
		Params:  params,
		Clients: &Clients{API: msapi.New(cred), Credential: cred},
		Config:  cfg,
		Logger:  slog.Default(),
	}
}

func TestDefaultRegistryCoversAllActions(t *testing.T) {
	expected := []string{
		"profile_get", "profile_get_user", "obtener_perfil_app_test",
		"calendar_list_events", "calendar_get_event", "calendar_create_event",
		"calendar_delete_event", "calendar_get_schedule",
		"mail_list_messages", "mail_get_message", "mail_send",
		"mail_move_message", "mail_delete_message",
		"drive_list_children", "drive_search", "drive_download_file",
		"drive_upload_file", "drive_delete_item",
		"sharepoint_get_site", "sharepoint_list_items", "sharepoint_add_list_item",
		"memory_save", "memory_list",
		"teams_list_joined", "teams_list_channels", "teams_send_channel_message",
		"teams_list_chats",
		"bookings_list_businesses", "bookings_list_appointments",
		"todo_list_lists", "todo_list_tasks", "todo_create_task",
		"planner_list_tasks",
		"insights_used_documents", "insights_trending",
		"powerbi_list_workspaces", "powerbi_list_datasets",
		"powerbi_refresh_dataset", "powerbi_list_reports",
		"flow_list_environments", "flow_list_flows", "flow_trigger",
		"azure_list_subscriptions", "azure_list_resource_groups",
		"azure_list_resources",
		"github_get_repo", "github_list_issues", "github_create_issue",
		"github_list_workflow_runs",
		"openai_chat_completion", "openai_embeddings",
	}

	r := DefaultRegistry()
	for _, name := range expected {
		_, ok := r.Lookup(name)
		assert.True(t, ok, "action %q not registered", name)
	}
	assert.Len(t, r.Names(), len(expected))
}

func TestLookupUnknownAction(t *testing.T) {
	r := DefaultRegistry()
	_, ok := r.Lookup("no_such_action")
	assert.False(t, ok)
}

func TestNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", nil)
	r.Register("alpha", nil)
	r.Register("mid", nil)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}
