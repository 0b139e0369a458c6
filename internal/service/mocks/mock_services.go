// Package mocks provides mock implementations of service interfaces for testing.
package mocks

import (
	"context"

	"micasa/internal/models"
	"micasa/internal/storage"
)

// MockAuthService is a mock implementation of AuthServicer.
type MockAuthService struct {
	RegisterFunc    func(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	LoginFunc       func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	RefreshFunc     func(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error)
	LogoutFunc      func(ctx context.Context, req *models.LogoutRequest) error
	LogoutAllFunc   func(ctx context.Context, uid string) error
	IssueTokensFunc func(ctx context.Context, user *models.User) (*models.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, req *models.LogoutRequest) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, req)
	}
	return nil
}

func (m *MockAuthService) LogoutAll(ctx context.Context, uid string) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, uid)
	}
	return nil
}

func (m *MockAuthService) IssueTokens(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	if m.IssueTokensFunc != nil {
		return m.IssueTokensFunc(ctx, user)
	}
	return nil, nil
}

// MockUserService is a mock implementation of UserServicer.
type MockUserService struct {
	GetProfileFunc               func(ctx context.Context, uid string) (*models.User, error)
	ListUsersFunc                func(ctx context.Context) ([]models.User, error)
	UpdateProfileFunc            func(ctx context.Context, uid string, req *models.UpdateProfileRequest, image *storage.Upload) (*models.User, error)
	DeleteProfileFunc            func(ctx context.Context, uid string) error
	ChangeOwnRoleFunc            func(ctx context.Context, uid string, role models.Role) (*models.User, error)
	AssignRoleFunc               func(ctx context.Context, actor models.Actor, uid string, role models.Role) (*models.User, error)
	NotificationsFunc            func(ctx context.Context, uid string) ([]models.Notification, error)
	MarkNotificationReadFunc     func(ctx context.Context, uid, notificationID string) error
	MarkAllNotificationsReadFunc func(ctx context.Context, uid string) error
	ActivityFunc                 func(ctx context.Context, uid string) ([]models.ActivityEntry, error)
}

func (m *MockUserService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, uid)
	}
	return nil, nil
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []models.User{}, nil
}

func (m *MockUserService) UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest, image *storage.Upload) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, uid, req, image)
	}
	return nil, nil
}

func (m *MockUserService) DeleteProfile(ctx context.Context, uid string) error {
	if m.DeleteProfileFunc != nil {
		return m.DeleteProfileFunc(ctx, uid)
	}
	return nil
}

func (m *MockUserService) ChangeOwnRole(ctx context.Context, uid string, role models.Role) (*models.User, error) {
	if m.ChangeOwnRoleFunc != nil {
		return m.ChangeOwnRoleFunc(ctx, uid, role)
	}
	return nil, nil
}

func (m *MockUserService) AssignRole(ctx context.Context, actor models.Actor, uid string, role models.Role) (*models.User, error) {
	if m.AssignRoleFunc != nil {
		return m.AssignRoleFunc(ctx, actor, uid, role)
	}
	return nil, nil
}

func (m *MockUserService) Notifications(ctx context.Context, uid string) ([]models.Notification, error) {
	if m.NotificationsFunc != nil {
		return m.NotificationsFunc(ctx, uid)
	}
	return []models.Notification{}, nil
}

func (m *MockUserService) MarkNotificationRead(ctx context.Context, uid, notificationID string) error {
	if m.MarkNotificationReadFunc != nil {
		return m.MarkNotificationReadFunc(ctx, uid, notificationID)
	}
	return nil
}

func (m *MockUserService) MarkAllNotificationsRead(ctx context.Context, uid string) error {
	if m.MarkAllNotificationsReadFunc != nil {
		return m.MarkAllNotificationsReadFunc(ctx, uid)
	}
	return nil
}

func (m *MockUserService) Activity(ctx context.Context, uid string) ([]models.ActivityEntry, error) {
	if m.ActivityFunc != nil {
		return m.ActivityFunc(ctx, uid)
	}
	return []models.ActivityEntry{}, nil
}

// MockListingService is a mock implementation of ListingServicer.
type MockListingService struct {
	CreateFunc          func(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error)
	GetFunc             func(ctx context.Context, lid int64) (*models.Listing, error)
	ListFunc            func(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error)
	UpdateFunc          func(ctx context.Context, actor models.Actor, lid int64, input *models.ListingInput, images []storage.Upload) (*models.Listing, error)
	DeleteFunc          func(ctx context.Context, actor models.Actor, lid int64) (*models.DeleteListingResult, error)
	RecomputeRatingFunc func(ctx context.Context, lid int64) (*models.Listing, error)
}

func (m *MockListingService) Create(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, input, images)
	}
	return nil, nil
}

func (m *MockListingService) Get(ctx context.Context, lid int64) (*models.Listing, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, lid)
	}
	return nil, nil
}

func (m *MockListingService) List(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, query)
	}
	return &models.ListingListResponse{Items: []models.Listing{}}, nil
}

func (m *MockListingService) Update(ctx context.Context, actor models.Actor, lid int64, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, lid, input, images)
	}
	return nil, nil
}

func (m *MockListingService) Delete(ctx context.Context, actor models.Actor, lid int64) (*models.DeleteListingResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, lid)
	}
	return nil, nil
}

func (m *MockListingService) RecomputeRating(ctx context.Context, lid int64) (*models.Listing, error) {
	if m.RecomputeRatingFunc != nil {
		return m.RecomputeRatingFunc(ctx, lid)
	}
	return nil, nil
}

// MockReviewService is a mock implementation of ReviewServicer.
type MockReviewService struct {
	CreateFunc func(ctx context.Context, actor models.Actor, lid int64, req *models.CreateReviewRequest) (*models.ReviewResponse, error)
	ListFunc   func(ctx context.Context, lid int64) ([]models.Review, error)
}

func (m *MockReviewService) Create(ctx context.Context, actor models.Actor, lid int64, req *models.CreateReviewRequest) (*models.ReviewResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, lid, req)
	}
	return nil, nil
}

func (m *MockReviewService) List(ctx context.Context, lid int64) ([]models.Review, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, lid)
	}
	return []models.Review{}, nil
}

// MockWishlistService is a mock implementation of WishlistServicer.
type MockWishlistService struct {
	ToggleFunc func(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error)
	StatusFunc func(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error)
	ListFunc   func(ctx context.Context, uid string) ([]models.Listing, error)
}

func (m *MockWishlistService) Toggle(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, uid, lid)
	}
	return nil, nil
}

func (m *MockWishlistService) Status(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, uid, lid)
	}
	return nil, nil
}

func (m *MockWishlistService) List(ctx context.Context, uid string) ([]models.Listing, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, uid)
	}
	return []models.Listing{}, nil
}
