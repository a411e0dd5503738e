// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// mail.go - Outlook mail actions.
//
// Listings and single-message fetches accept an as_text flag that converts
// HTML bodies to plain text before the payload leaves the gateway.

package actions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jaytaylor/html2text"

	"github.com/garridom/m365-gateway/internal/envelope"
	"github.com/garridom/m365-gateway/internal/logging"
)

func registerMailActions(r *Registry) {
	r.Register("mail_list_messages", mailListMessages)
	r.Register("mail_get_message", mailGetMessage)
	r.Register("mail_send", mailSend)
	r.Register("mail_move_message", mailMoveMessage)
	r.Register("mail_delete_message", mailDeleteMessage)
}

func mailListMessages(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	folder := inv.Params.StringOr("folder", "inbox")
	path := "/me/mailFolders/" + folder + "/messages"

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}

	items := result.RawItems()
	if inv.Params.BoolOr("as_text", false) {
		for _, item := range items {
			if message, ok := item.(map[string]any); ok {
				convertBodyToText(message)
			}
		}
	}
	env := envelope.Paged(items, result.TotalRetrieved, result.PagesProcessed, result.Truncated)
	return env, nil
}

func mailGetMessage(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	messageID, err := inv.Params.RequiredString("message_id")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodGet, inv.graphURL("/me/messages/"+messageID), inv.graphScopes(), nil)
	if err != nil {
		return nil, err
	}
	if inv.Params.BoolOr("as_text", false) {
		convertBodyToText(data)
	}
	return envelope.Success(data), nil
}

// convertBodyToText rewrites an HTML message body as plain text in place.
// Conversion failures leave the original body untouched.
func convertBodyToText(message map[string]any) {
	body, ok := message["body"].(map[string]any)
	if !ok {
		return
	}
	contentType, _ := body["contentType"].(string)
	content, _ := body["content"].(string)
	if !strings.EqualFold(contentType, "html") || content == "" {
		return
	}

	text, err := html2text.FromString(content, html2text.Options{TextOnly: true})
	if err != nil {
		logging.ActionsLogger.Warn("HTML to text conversion failed, keeping original body", "error", err)
		return
	}
	body["content"] = text
	body["contentType"] = "text"
}

func mailSend(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	message := inv.Params.ObjectOr("message", nil)
	if message == nil {
		subject, err := inv.Params.RequiredString("subject")
		if err != nil {
			return nil, err
		}
		to := inv.Params.StringSlice("to")
		if len(to) == 0 {
			return nil, fmt.Errorf("%w: to", ErrMissingParam)
		}
		contentType := "text"
		if inv.Params.BoolOr("html", false) {
			contentType = "html"
		}

		message = map[string]any{
			"subject":      subject,
			"body":         map[string]any{"contentType": contentType, "content": inv.Params.StringOr("body", "")},
			"toRecipients": recipients(to),
		}
		if cc := inv.Params.StringSlice("cc"); len(cc) > 0 {
			message["ccRecipients"] = recipients(cc)
		}
		if bcc := inv.Params.StringSlice("bcc"); len(bcc) > 0 {
			message["bccRecipients"] = recipients(bcc)
		}
	}

	payload := map[string]any{
		"message":         message,
		"saveToSentItems": inv.Params.BoolOr("save_to_sent", true),
	}
	if _, err := inv.Clients.API.DoJSON(ctx, http.MethodPost, inv.graphURL("/me/sendMail"), inv.graphScopes(), payload); err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_mail_sent", map[string]any{"subject": message["subject"]}), nil
}

func recipients(addresses []string) []map[string]any {
	out := make([]map[string]any, 0, len(addresses))
	for _, address := range addresses {
		out = append(out, map[string]any{"emailAddress": map[string]any{"address": address}})
	}
	return out
}

func mailMoveMessage(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	messageID, err := inv.Params.RequiredString("message_id")
	if err != nil {
		return nil, err
	}
	destination, err := inv.Params.RequiredString("destination_folder_id")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL("/me/messages/"+messageID+"/move"), inv.graphScopes(), map[string]any{"destinationId": destination})
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}

func mailDeleteMessage(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	messageID, err := inv.Params.RequiredString("message_id")
	if err != nil {
		return nil, err
	}

	if _, err := inv.Clients.API.DoJSON(ctx, http.MethodDelete, inv.graphURL("/me/messages/"+messageID), inv.graphScopes(), nil); err != nil {
		return nil, err
	}
	return envelope.Success(map[string]any{"message_id": messageID, "deleted": true}), nil
}
