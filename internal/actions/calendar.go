// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// calendar.go - Outlook calendar actions.

package actions

import (
	"context"
	"net/http"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerCalendarActions(r *Registry) {
	r.Register("calendar_list_events", calendarListEvents)
	r.Register("calendar_get_event", calendarGetEvent)
	r.Register("calendar_create_event", calendarCreateEvent)
	r.Register("calendar_delete_event", calendarDeleteEvent)
	r.Register("calendar_get_schedule", calendarGetSchedule)
}

// calendarListEvents lists events from the default calendar. When a time
// window is given it uses the calendarView endpoint instead.
func calendarListEvents(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	path := "/me/events"
	query := inv.listQuery()

	start := inv.Params.StringOr("start_datetime", "")
	end := inv.Params.StringOr("end_datetime", "")
	if start != "" && end != "" {
		path = "/me/calendarView"
		query.Set("startDateTime", start)
		query.Set("endDateTime", end)
	}

	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), query, inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func calendarGetEvent(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	eventID, err := inv.Params.RequiredString("event_id")
	if err != nil {
		return nil, err
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodGet, inv.graphURL("/me/events/"+eventID), inv.graphScopes(), nil)
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}

// calendarCreateEvent creates an event. Either a full "event" object is
// passed through verbatim, or one is assembled from flat params.
func calendarCreateEvent(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	event := inv.Params.ObjectOr("event", nil)
	if event == nil {
		subject, err := inv.Params.RequiredString("subject")
		if err != nil {
			return nil, err
		}
		start, err := inv.Params.RequiredString("start_datetime")
		if err != nil {
			return nil, err
		}
		end, err := inv.Params.RequiredString("end_datetime")
		if err != nil {
			return nil, err
		}
		timeZone := inv.Params.StringOr("timezone", "UTC")

		event = map[string]any{
			"subject": subject,
			"start":   map[string]any{"dateTime": start, "timeZone": timeZone},
			"end":     map[string]any{"dateTime": end, "timeZone": timeZone},
		}
		if body := inv.Params.StringOr("body", ""); body != "" {
			event["body"] = map[string]any{"contentType": "text", "content": body}
		}
		if attendees := inv.Params.StringSlice("attendees"); len(attendees) > 0 {
			list := make([]map[string]any, 0, len(attendees))
			for _, address := range attendees {
				list = append(list, map[string]any{
					"emailAddress": map[string]any{"address": address},
					"type":         "required",
				})
			}
			event["attendees"] = list
		}
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL("/me/events"), inv.graphScopes(), event)
	if err != nil {
		return nil, err
	}
	return envelope.SuccessStatus("success_event_created", data), nil
}

func calendarDeleteEvent(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	eventID, err := inv.Params.RequiredString("event_id")
	if err != nil {
		return nil, err
	}

	if _, err := inv.Clients.API.DoJSON(ctx, http.MethodDelete, inv.graphURL("/me/events/"+eventID), inv.graphScopes(), nil); err != nil {
		return nil, err
	}
	return envelope.Success(map[string]any{"event_id": eventID, "deleted": true}), nil
}

// calendarGetSchedule resolves free/busy information for a set of mailboxes.
func calendarGetSchedule(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	schedules := inv.Params.StringSlice("schedules")
	if len(schedules) == 0 {
		address, err := inv.Params.RequiredString("schedules")
		if err != nil {
			return nil, err
		}
		schedules = []string{address}
	}
	start, err := inv.Params.RequiredString("start_datetime")
	if err != nil {
		return nil, err
	}
	end, err := inv.Params.RequiredString("end_datetime")
	if err != nil {
		return nil, err
	}
	timeZone := inv.Params.StringOr("timezone", "UTC")

	payload := map[string]any{
		"schedules":                schedules,
		"startTime":                map[string]any{"dateTime": start, "timeZone": timeZone},
		"endTime":                  map[string]any{"dateTime": end, "timeZone": timeZone},
		"availabilityViewInterval": inv.Params.IntOr("interval_minutes", 30),
	}

	data, err := inv.Clients.API.DoObject(ctx, http.MethodPost, inv.graphURL("/me/calendar/getSchedule"), inv.graphScopes(), payload)
	if err != nil {
		return nil, err
	}
	return envelope.Success(data), nil
}
