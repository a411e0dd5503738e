// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// paginate.go - Generic paginated collection fetch.
//
// Walks a collection endpoint following the server-issued continuation link
// (@odata.nextLink on Graph and Power BI, nextLink on ARM) until an item
// cap, a page-count safety bound, or the end of the collection is reached.
// Query parameters are attached only to the very first request; the
// continuation link is opaque and used verbatim per OData convention.

package msapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/garridom/m365-gateway/internal/logging"
)

// DefaultMaxPages is the page-count safety bound applied when the caller
// does not supply one.
const DefaultMaxPages = 20

// PageOptions bound a paginated fetch.
type PageOptions struct {
	// MaxItems is the target total item count; zero means no item cap.
	MaxItems int
	// MaxPages is the page-count safety bound; zero means DefaultMaxPages.
	MaxPages int
}

// PageResult is the aggregate of a paginated fetch.
type PageResult struct {
	Items          []json.RawMessage
	TotalRetrieved int
	PagesProcessed int

	// Truncated reports that a cap stopped the walk while the server still
	// advertised a continuation link. Callers surface it to API consumers
	// instead of silently returning partial data as complete.
	Truncated bool
}

type collectionPage struct {
	nextLink string
	items    []json.RawMessage
	hasValue bool
}

// CollectPages fetches pages from baseURL until opts caps are reached or no
// continuation link remains. The initial query is encoded onto the first
// request only.
func (c *Client) CollectPages(ctx context.Context, baseURL string, query url.Values, scopes []string, opts PageOptions) (*PageResult, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	result := &PageResult{Items: []json.RawMessage{}}

	currentURL := baseURL
	if len(query) > 0 {
		currentURL = baseURL + "?" + query.Encode()
	}

	for currentURL != "" && result.PagesProcessed < maxPages {
		raw, err := c.DoJSON(ctx, http.MethodGet, currentURL, scopes, nil)
		if err != nil {
			return nil, err
		}

		page, err := parseCollectionPage(raw)
		if err != nil {
			return nil, err
		}
		result.PagesProcessed++

		if !page.hasValue {
			// Not a collection document. Return whatever was collected.
			logging.APILogger.Warn("Collection response missing value array, stopping pagination",
				"url", currentURL, "pages_processed", result.PagesProcessed)
			currentURL = ""
			break
		}

		result.Items = append(result.Items, page.items...)
		currentURL = page.nextLink

		if opts.MaxItems > 0 && len(result.Items) >= opts.MaxItems {
			overflow := len(result.Items) > opts.MaxItems
			result.Items = result.Items[:opts.MaxItems]
			result.Truncated = overflow || currentURL != ""
			break
		}
	}

	if currentURL != "" && !result.Truncated {
		logging.APILogger.Warn("Page safety limit reached with more data available server-side",
			"pages_processed", result.PagesProcessed, "items_collected", len(result.Items))
		result.Truncated = true
	}

	result.TotalRetrieved = len(result.Items)
	return result, nil
}

func parseCollectionPage(raw json.RawMessage) (*collectionPage, error) {
	if raw == nil {
		return &collectionPage{}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	page := &collectionPage{}
	value, ok := probe["value"]
	if !ok {
		return page, nil
	}
	page.hasValue = true
	if err := json.Unmarshal(value, &page.items); err != nil {
		return nil, err
	}

	// Graph and Power BI use @odata.nextLink; ARM uses nextLink.
	for _, key := range []string{"@odata.nextLink", "nextLink"} {
		if link, ok := probe[key]; ok {
			var next string
			if err := json.Unmarshal(link, &next); err == nil && next != "" {
				page.nextLink = next
				break
			}
		}
	}
	return page, nil
}

// RawItems converts the collected items into a []any for envelope payloads.
func (r *PageResult) RawItems() []any {
	items := make([]any, 0, len(r.Items))
	for _, raw := range r.Items {
		var item any
		if err := json.Unmarshal(raw, &item); err == nil {
			items = append(items, item)
		}
	}
	return items
}
