// Package authz maps user roles to the actions they may perform.
package authz

import "micasa/internal/models"

// Action constants define the authorization actions.
const (
	ActionListingCreate    = "listing:create"
	ActionListingManageAny = "listing:manage_any"
	ActionReviewCreate     = "review:create"
	ActionWishlistToggle   = "wishlist:toggle"
	ActionUserList         = "user:list"
	ActionUserAssignRole   = "user:assign_role"
)

// Authorizer defines the interface for authorization checks.
type Authorizer interface {
	// CanPerform checks if a role grants an action.
	CanPerform(role models.Role, action string) bool

	// CanModifyListing checks if a user may update or delete a listing.
	CanModifyListing(uid string, role models.Role, listing *models.Listing) bool

	// RolesFor returns the roles granted an action.
	RolesFor(action string) []models.Role

	// HomeRoute returns the client route a role lands on after sign in.
	HomeRoute(role models.Role) string
}
