// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// registry.go - The action dispatch table.
//
// Every action handler shares one calling convention: it receives the
// invocation (params plus the process-wide clients, injected once at
// startup) and returns a result envelope. The registry is the single
// lookup from action name to handler.

package actions

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/google/go-github/v80/github"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"

	"github.com/garridom/m365-gateway/internal/config"
	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/msapi"
)

// Clients groups the process-wide API clients handlers may use.
type Clients struct {
	// API is the authenticated pass-through client for Graph, ARM,
	// Power BI, and Azure OpenAI calls.
	API *msapi.Client
	// Credential is the raw token credential, for handlers that build
	// their own client (the managed identity smoke test).
	Credential azcore.TokenCredential
	// Graph is the typed Microsoft Graph SDK client.
	Graph *msgraphsdk.GraphServiceClient
	// GitHub is the GitHub REST client.
	GitHub *github.Client
}

// Invocation carries one action call through its handler.
type Invocation struct {
	ID      string
	Action  string
	Params  Params
	Clients *Clients
	Config  *config.Config
	Logger  *slog.Logger
}

// Handler executes one action and returns its result envelope.
type Handler func(ctx context.Context, inv *Invocation) (*envelope.Envelope, error)

// Registry maps action names to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds a handler under an action name. Later registrations of the
// same name win; startup code registers each name once.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Lookup returns the handler for an action name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry builds the registry with every gateway action.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerProfileActions(r)
	registerCalendarActions(r)
	registerMailActions(r)
	registerDriveActions(r)
	registerSharePointActions(r)
	registerTeamsActions(r)
	registerBookingsActions(r)
	registerTasksActions(r)
	registerInsightsActions(r)
	registerPowerBIActions(r)
	registerFlowActions(r)
	registerAzureActions(r)
	registerGitHubActions(r)
	registerOpenAIActions(r)
	return r
}

// graphURL builds an absolute Graph API URL from a path.
func (inv *Invocation) graphURL(path string) string {
	return inv.Config.GraphBaseURL + path
}

func (inv *Invocation) graphScopes() []string {
	return []string{inv.Config.GraphScope}
}

func (inv *Invocation) armScopes() []string {
	return []string{inv.Config.ARMScope}
}

func (inv *Invocation) powerBIScopes() []string {
	return []string{inv.Config.PowerBIScope}
}

// pageOptions derives pagination bounds from params, falling back to the
// configured defaults. Params: max_items, max_pages.
func (inv *Invocation) pageOptions() msapi.PageOptions {
	return msapi.PageOptions{
		MaxItems: inv.Params.IntOr("max_items", inv.Config.MaxItems),
		MaxPages: inv.Params.IntOr("max_pages", inv.Config.MaxPages),
	}
}

// listQuery builds the initial OData query for a paginated listing.
// Params: top, filter, select, orderby, search.
func (inv *Invocation) listQuery() url.Values {
	query := url.Values{}
	top := inv.Params.IntOr("top", inv.Config.DefaultPageSize)
	query.Set("$top", strconv.Itoa(top))
	if filter := inv.Params.StringOr("filter", ""); filter != "" {
		query.Set("$filter", filter)
	}
	if sel := inv.Params.StringOr("select", ""); sel != "" {
		query.Set("$select", sel)
	}
	if orderby := inv.Params.StringOr("orderby", ""); orderby != "" {
		query.Set("$orderby", orderby)
	}
	if search := inv.Params.StringOr("search", ""); search != "" {
		query.Set("$search", search)
	}
	return query
}

// pagedEnvelope wraps a page result in the uniform envelope.
func pagedEnvelope(result *msapi.PageResult) *envelope.Envelope {
	return envelope.Paged(result.RawItems(), result.TotalRetrieved, result.PagesProcessed, result.Truncated)
}
