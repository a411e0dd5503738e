// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// tasks.go - Microsoft To Do and Planner actions.

package actions

import (
	"context"
	"net/http"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerTasksActions(r *Registry) {
	r.Register("todo_list_lists", todoListLists)
	r.Register("todo_list_tasks", todoListTasks)
	r.Register("todo_create_task", todoCreateTask)
	r.Register("planner_list_tasks", plannerListTasks)
}

func todoListLists(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/me/todo/lists"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func todoListTasks(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	listID, err := inv.Params.RequiredString("list_id")
	if err != nil {
		return nil, err
	}

	path := "/me/todo/lists/" + listID + "/tasks"
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func todoCreateTask(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	listID, err := inv.Params.RequiredString("list_id")
	if err != nil {
		return nil, err
	}
	title, err := inv.Params.RequiredString("title")
	if err != nil {
		return nil, err
	}

	task := map[string]any{"title": title}
	if body := inv.Params.StringOr("body", ""); body != "" {
		task["body"] = map[string]any{"contentType": "text", "content": body}
	}
	if due := inv.Params.StringOr("due_datetime", ""); due != "" {
		task["dueDateTime"] = map[string]any{
			"dateTime": due,
			"timeZone": inv.Params.StringOr("timezone", "UTC"),
		}
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL("/me/todo/lists/"+listID+"/tasks"), inv.graphScopes(), task)
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_task_created", data), nil
}

func plannerListTasks(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	planID, err := inv.Params.RequiredString("plan_id")
	if err != nil {
		return nil, err
	}

	path := "/planner/plans/" + planID + "/tasks"
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
