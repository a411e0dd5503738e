// Copyright (c) 2025 Marcos Garrido
//
// Licensed under the MIT License. See LICENSE file in the project root for full license information.

// bookings.go - Microsoft Bookings actions.

package actions

import (
	"context"

	"github.com/garridom/m365-gateway/internal/envelope"
)

func registerBookingsActions(r *Registry) {
	r.Register("bookings_list_businesses", bookingsListBusinesses)
	r.Register("bookings_list_appointments", bookingsListAppointments)
}

func bookingsListBusinesses(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL("/solutions/bookingBusinesses"), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}

func bookingsListAppointments(ctx context.Context, inv *Invocation) (*envelope.Envelope, error) {
	businessID, err := inv.Params.RequiredString("business_id")
	if err != nil {
		return nil, err
	}

	path := "/solutions/bookingBusinesses/" + businessID + "/appointments"
	result, err := inv.Clients.API.CollectPages(ctx, inv.graphURL(path), inv.listQuery(), inv.graphScopes(), inv.pageOptions())
	if err != nil {
		return nil, err
	}
	return pagedEnvelope(result), nil
}
