package authz

import "micasa/internal/models"

// DefaultHomeRoute is used for roles without an entry in homeRoutes.
const DefaultHomeRoute = "/listings"

// LocalAuthorizer implements Authorizer with static tables.
type LocalAuthorizer struct {
	permissions map[string][]models.Role
	homeRoutes  map[models.Role]string
}

// NewLocalAuthorizer creates a new LocalAuthorizer.
func NewLocalAuthorizer() *LocalAuthorizer {
	return &LocalAuthorizer{
		permissions: rolePermissions,
		homeRoutes:  homeRoutes,
	}
}

// rolePermissions maps actions to the roles that can perform them.
var rolePermissions = map[string][]models.Role{
	ActionListingCreate:    {models.RoleOwner, models.RoleAdmin},
	ActionListingManageAny: {models.RoleAdmin},
	ActionReviewCreate:     {models.RoleHunter, models.RoleOwner, models.RoleMover, models.RoleAdmin},
	ActionWishlistToggle:   {models.RoleHunter, models.RoleOwner, models.RoleMover, models.RoleAdmin},
	ActionUserList:         {models.RoleAdmin},
	ActionUserAssignRole:   {models.RoleAdmin},
}

var homeRoutes = map[models.Role]string{
	models.RoleHunter: "/listings",
	models.RoleOwner:  "/owner/dashboard",
	models.RoleMover:  "/mover/dashboard",
	models.RoleAdmin:  "/admin/dashboard",
}

func (a *LocalAuthorizer) CanPerform(role models.Role, action string) bool {
	for _, r := range a.permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// CanModifyListing allows the listing's owner and roles granted ActionListingManageAny.
func (a *LocalAuthorizer) CanModifyListing(uid string, role models.Role, listing *models.Listing) bool {
	if listing == nil {
		return false
	}
	if uid != "" && listing.OwnerUID == uid {
		return true
	}
	return a.CanPerform(role, ActionListingManageAny)
}

func (a *LocalAuthorizer) RolesFor(action string) []models.Role {
	roles := a.permissions[action]
	out := make([]models.Role, len(roles))
	copy(out, roles)
	return out
}

func (a *LocalAuthorizer) HomeRoute(role models.Role) string {
	if route, ok := a.homeRoutes[role]; ok {
		return route
	}
	return DefaultHomeRoute
}

// Ensure LocalAuthorizer implements Authorizer interface
var _ Authorizer = (*LocalAuthorizer)(nil)
