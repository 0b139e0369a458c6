package authz

import (
	"testing"

	"micasa/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLocalAuthorizer_CanPerform(t *testing.T) {
	auth := NewLocalAuthorizer()

	tests := []struct {
		name     string
		role     models.Role
		action   string
		expected bool
	}{
		{"owner can create listings", models.RoleOwner, ActionListingCreate, true},
		{"admin can create listings", models.RoleAdmin, ActionListingCreate, true},
		{"hunter cannot create listings", models.RoleHunter, ActionListingCreate, false},
		{"mover cannot create listings", models.RoleMover, ActionListingCreate, false},

		{"admin can manage any listing", models.RoleAdmin, ActionListingManageAny, true},
		{"owner cannot manage other listings", models.RoleOwner, ActionListingManageAny, false},


		{"hunter can review", models.RoleHunter, ActionReviewCreate, true},
		{"mover can review", models.RoleMover, ActionReviewCreate, true},
		{"hunter can toggle wishlist", models.RoleHunter, ActionWishlistToggle, true},

		{"admin can list users", models.RoleAdmin, ActionUserList, true},
		{"hunter cannot list users", models.RoleHunter, ActionUserList, false},
		{"admin can assign roles", models.RoleAdmin, ActionUserAssignRole, true},
		{"owner cannot assign roles", models.RoleOwner, ActionUserAssignRole, false},

		{"unknown action is denied", models.RoleAdmin, "listing:explode", false},
		{"unknown role is denied", models.Role("landlord"), ActionReviewCreate, false},
		{"empty role is denied", "", ActionReviewCreate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.CanPerform(tt.role, tt.action))
		})
	}
}

func TestLocalAuthorizer_CanModifyListing(t *testing.T) {
	auth := NewLocalAuthorizer()
	listing := &models.Listing{LID: 1, OwnerUID: "owner-1"}

	assert.True(t, auth.CanModifyListing("owner-1", models.RoleOwner, listing))
	assert.False(t, auth.CanModifyListing("owner-2", models.RoleOwner, listing))
	assert.True(t, auth.CanModifyListing("admin-1", models.RoleAdmin, listing))
	assert.False(t, auth.CanModifyListing("hunter-1", models.RoleHunter, listing))
	assert.False(t, auth.CanModifyListing("", models.RoleOwner, &models.Listing{LID: 2}))
	assert.False(t, auth.CanModifyListing("owner-1", models.RoleOwner, nil))
}

func TestLocalAuthorizer_RolesFor(t *testing.T) {
	auth := NewLocalAuthorizer()

	roles := auth.RolesFor(ActionListingCreate)
	assert.ElementsMatch(t, []models.Role{models.RoleOwner, models.RoleAdmin}, roles)

	roles[0] = models.RoleHunter
	assert.False(t, auth.CanPerform(models.RoleHunter, ActionListingCreate), "RolesFor must return a copy")

	assert.Empty(t, auth.RolesFor("unknown"))
}

func TestLocalAuthorizer_HomeRoute(t *testing.T) {
	auth := NewLocalAuthorizer()

	tests := []struct {
		role     models.Role
		expected string
	}{
		{models.RoleHunter, "/listings"},
		{models.RoleOwner, "/owner/dashboard"},
		{models.RoleMover, "/mover/dashboard"},
		{models.RoleAdmin, "/admin/dashboard"},
		{models.Role("unknown"), DefaultHomeRoute},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.HomeRoute(tt.role))
		})
	}
}
