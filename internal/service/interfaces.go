// Package service contains business logic for the application.
package service

import (
	"context"

	"micasa/internal/models"
	"micasa/internal/storage"
)

// AuthServicer defines the interface for authentication operations.
type AuthServicer interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error)
	Logout(ctx context.Context, req *models.LogoutRequest) error
	LogoutAll(ctx context.Context, uid string) error
	IssueTokens(ctx context.Context, user *models.User) (*models.AuthResponse, error)
}

// UserServicer defines the interface for user operations.
type UserServicer interface {
	GetProfile(ctx context.Context, uid string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest, image *storage.Upload) (*models.User, error)
	DeleteProfile(ctx context.Context, uid string) error
	ChangeOwnRole(ctx context.Context, uid string, role models.Role) (*models.User, error)
	AssignRole(ctx context.Context, actor models.Actor, uid string, role models.Role) (*models.User, error)
	Notifications(ctx context.Context, uid string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, uid, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, uid string) error
	Activity(ctx context.Context, uid string) ([]models.ActivityEntry, error)
}

// ListingServicer defines the interface for listing operations.
type ListingServicer interface {
	Create(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error)
	Get(ctx context.Context, lid int64) (*models.Listing, error)
	List(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error)
	Update(ctx context.Context, actor models.Actor, lid int64, input *models.ListingInput, images []storage.Upload) (*models.Listing, error)
	Delete(ctx context.Context, actor models.Actor, lid int64) (*models.DeleteListingResult, error)
	RecomputeRating(ctx context.Context, lid int64) (*models.Listing, error)
}

// ReviewServicer defines the interface for review operations.
type ReviewServicer interface {
	Create(ctx context.Context, actor models.Actor, lid int64, req *models.CreateReviewRequest) (*models.ReviewResponse, error)
	List(ctx context.Context, lid int64) ([]models.Review, error)
}

// WishlistServicer defines the interface for wishlist operations.
type WishlistServicer interface {
	Toggle(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error)
	Status(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error)
	List(ctx context.Context, uid string) ([]models.Listing, error)
}

// Ensure concrete types implement interfaces
var (
	_ AuthServicer     = (*AuthService)(nil)
	_ UserServicer     = (*UserService)(nil)
	_ ListingServicer  = (*ListingService)(nil)
	_ ReviewServicer   = (*ReviewService)(nil)
	_ WishlistServicer = (*WishlistService)(nil)
)
