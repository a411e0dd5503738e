// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// openai.go - Azure OpenAI actions. Calls go through the shared
// pass-through client with Entra ID token auth against the configured
// deployment endpoint.

package actions

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/garridom/m365-gateway/internal/envelope"
)

// errOpenAIUnconfigured reports an OpenAI action invoked without an endpoint.
var errOpenAIUnconfigured = errors.New("azure openai endpoint not configured; set AZURE_OPENAI_ENDPOINT")

func registerOpenAIActions(r *Registry) {
	r.Register("openai_chat_completion", openAIChatCompletion)
	r.Register("openai_embeddings", openAIEmbeddings)
}

func (inv *Invocation) openAIScopes() []string {
	return []string{inv.Config.OpenAIScope}
}

// openAIURL builds a deployment operation URL, e.g.
// {endpoint}/openai/deployments/{deployment}/chat/completions?api-version=...
func (inv *Invocation) openAIURL(deployment, operation string) string {
	return inv.Config.OpenAIEndpoint + "/openai/deployments/" + deployment + "/" + operation +
		"?api-version=" + url.QueryEscape(inv.Config.OpenAIAPIVersion)
}

func openAIChatCompletion(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Config.OpenAIEndpoint == "" {
		return nil, errOpenAIUnconfigured
	}
	deployment := inv.Params.StringOr("deployment", inv.Config.OpenAIDeployment)

	payload := map[string]any{}
	if messages, ok := inv.Params["messages"]; ok {
		payload["messages"] = messages
	} else {
		prompt, err := inv.Params.RequiredString("prompt")
		if err != nil {
			return nil, err
		}
		payload["messages"] = []map[string]any{{"role": "user", "content": prompt}}
	}
	if maxTokens := inv.Params.IntOr("max_tokens", 0); maxTokens > 0 {
		payload["max_tokens"] = maxTokens
	}
	if temperature, ok := inv.Params["temperature"]; ok {
		payload["temperature"] = temperature
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.openAIURL(deployment, "chat/completions"), inv.openAIScopes(), payload)
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}

func openAIEmbeddings(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	if inv.Config.OpenAIEndpoint == "" {
		return nil, errOpenAIUnconfigured
	}
	deployment := inv.Params.StringOr("deployment", inv.Config.OpenAIDeployment)
	input, err := inv.Params.RequiredString("input")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.openAIURL(deployment, "embeddings"), inv.openAIScopes(), map[string]any{"input": input})
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}
