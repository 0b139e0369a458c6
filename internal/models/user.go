// Package models defines data structures for the application.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the marketplace persona a user acts as.
type Role string

const (
	RoleHunter Role = "hunter"
	RoleOwner  Role = "owner"
	RoleMover  Role = "mover"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHunter, RoleOwner, RoleMover, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick r for themselves.
func (r Role) SelfAssignable() bool {
	return r.Valid() && r != RoleAdmin
}

// User represents a user in the system.
type User struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty" example:"507f1f77bcf86cd799439011"`
	UID             string             `json:"uid" bson:"uid" example:"0b6c1f3e-6d8e-4a43-a3b5-2b1f0c9d7e21"`
	Email           string             `json:"email" bson:"email" example:"user@example.com"`
	Password        string             `json:"-" bson:"password"`
	Name            string             `json:"name" bson:"name" example:"Ana Torres"`
	Role            Role               `json:"role" bson:"role" example:"hunter"`
	ProfileImage    string             `json:"-" bson:"profileImage,omitempty"`
	ProfileImageURL string             `json:"profileImage,omitempty" bson:"-" example:"http://localhost:8080/uploads/3f1c.png"`
	Wishlist        []int64            `json:"wishlist" bson:"wishlist"`
	Notifications   []Notification     `json:"notifications,omitempty" bson:"notifications,omitempty"`
	Preferences     Preferences        `json:"preferences" bson:"preferences"`
	Activity        []ActivityEntry    `json:"-" bson:"activity,omitempty"`
	HomeRoute       string             `json:"homeRoute,omitempty" bson:"-" example:"/listings"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt" example:"2024-01-15T09:30:00Z"`
}

// InWishlist reports whether the listing is on the user's wishlist.
func (u *User) InWishlist(lid int64) bool {
	for _, id := range u.Wishlist {
		if id == lid {
			return true
		}
	}
	return false
}

// Preferences are per-user notification and display settings.
type Preferences struct {
	EmailNotifications bool   `json:"emailNotifications" bson:"emailNotifications" example:"true"`
	PushNotifications  bool   `json:"pushNotifications" bson:"pushNotifications" example:"false"`
	Locale             string `json:"locale" bson:"locale" example:"en-US"`
	Currency           string `json:"currency" bson:"currency" example:"USD"`
}

// DefaultPreferences are applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, Locale: "en-US", Currency: "USD"}
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationReview NotificationType = "review"
	NotificationLike   NotificationType = "like"
	NotificationSystem NotificationType = "system"
)

// Notification is embedded in the user document.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id" example:"507f1f77bcf86cd799439099"`
	Type      NotificationType   `json:"type" bson:"type" example:"review"`
	Title     string             `json:"title" bson:"title" example:"New review"`
	Message   string             `json:"message" bson:"message" example:"Someone rated your listing 5 stars"`
	ListingID int64              `json:"listingId,omitempty" bson:"listingId,omitempty" example:"3"`
	Read      bool               `json:"read" bson:"read" example:"false"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
}

// Activity actions recorded on the user document.
const (
	ActivityListingCreated = "listing_created"
	ActivityListingUpdated = "listing_updated"
	ActivityListingDeleted = "listing_deleted"
	ActivityReviewPosted   = "review_posted"
	ActivityWishlistAdd    = "wishlist_added"
	ActivityWishlistRemove = "wishlist_removed"
)

// MaxActivityEntries bounds the embedded activity log.
const MaxActivityEntries = 100

// ActivityEntry is one item of the user's activity log.
type ActivityEntry struct {
	Action    string    `json:"action" bson:"action" example:"review_posted"`
	ListingID int64     `json:"listingId,omitempty" bson:"listingId,omitempty" example:"3"`
	Detail    string    `json:"detail,omitempty" bson:"detail,omitempty" example:"rated 5"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
	Name     string `json:"name" binding:"required,min=2" example:"Ana Torres"`
	Role     Role   `json:"role" binding:"omitempty,selfrole" example:"hunter"`
}

// UpdateProfileRequest is the payload for updating the caller's profile.
// Nil fields keep their stored value.
type UpdateProfileRequest struct {
	Email              *string `json:"email" form:"email" binding:"omitempty,email" example:"new@example.com"`
	Name               *string `json:"name" form:"name" binding:"omitempty,min=2" example:"Ana T."`
	EmailNotifications *bool   `json:"emailNotifications" form:"emailNotifications" example:"true"`
	PushNotifications  *bool   `json:"pushNotifications" form:"pushNotifications" example:"false"`
	Locale             *string `json:"locale" form:"locale" binding:"omitempty,max=10" example:"es-MX"`
	Currency           *string `json:"currency" form:"currency" binding:"omitempty,len=3" example:"MXN"`
}

// ChangeRoleRequest is the payload for changing a role.
type ChangeRoleRequest struct {
	Role Role `json:"role" binding:"required,userrole" example:"owner"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}
