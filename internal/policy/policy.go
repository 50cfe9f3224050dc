// Package policy holds the authorization rules for travel orders. The
// functions are pure: they look only at the actor's granted scopes, the
// actor id and the order's owner. The role attribute never participates.
package policy

import "travelorders/internal/domain/models"

// CanCreate allows creation for user-permission holders only. An admin
// token without user-permission cannot request trips.
func CanCreate(actor models.Actor) bool {
	return actor.HasScope(models.ScopeUser)
}

// CanList allows listing for either scope. The scope decides the shape of
// the list (owner-scoped for user-permission, everything including
// soft-deleted rows for admin-permission), not eligibility.
func CanList(actor models.Actor) bool {
	return actor.HasScope(models.ScopeUser) || actor.HasScope(models.ScopeAdmin)
}

// CanView allows admins to view any order. A user-permission holder may
// only view orders they requested.
func CanView(actor models.Actor, order models.TravelOrder) bool {
	if actor.HasScope(models.ScopeUser) && order.UserID != actor.ID {
		return false
	}
	return actor.HasScope(models.ScopeUser) || actor.HasScope(models.ScopeAdmin)
}

// CanAssess allows status transitions for admin-permission holders, except
// on orders they requested themselves.
func CanAssess(actor models.Actor, order models.TravelOrder) bool {
	return actor.HasScope(models.ScopeAdmin) && order.UserID != actor.ID
}

// CanCancel is owner-only. Admin-permission holders are denied even for
// their own orders; the cancellation path belongs to the requester.
func CanCancel(actor models.Actor, order models.TravelOrder) bool {
	if actor.HasScope(models.ScopeAdmin) {
		return false
	}
	return actor.HasScope(models.ScopeUser) && order.UserID == actor.ID
}
