package service

import (
	"context"
	"errors"
	"fmt"

	"micasa/internal/authz"
	"micasa/internal/cache"
	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService handles business logic for user operations.
type UserService struct {
	repo        repository.UserRepository
	listingRepo repository.ListingRepository
	cache       cache.Cache
	tokenStore  cache.RefreshTokenStore
	images      *storage.Images
	jobs        queue.Queue
	present     presenter
}

// UserServiceConfig holds configuration for UserService.
type UserServiceConfig struct {
	UserRepo      repository.UserRepository
	ListingRepo   repository.ListingRepository
	Cache         cache.Cache
	TokenStore    cache.RefreshTokenStore
	Images        *storage.Images
	Jobs          queue.Queue
	Authorizer    authz.Authorizer
	PublicBaseURL string
}

// NewUserService creates a new UserService.
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		repo:        cfg.UserRepo,
		listingRepo: cfg.ListingRepo,
		cache:       cfg.Cache,
		tokenStore:  cfg.TokenStore,
		images:      cfg.Images,
		jobs:        cfg.Jobs,
		present:     presenter{authorizer: cfg.Authorizer, baseURL: cfg.PublicBaseURL},
	}
}

// GetProfile retrieves a user by uid (with caching).
func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.User, error) {
	cacheKey := cache.UserCacheKey(uid)
	var user models.User
	found, err := s.cache.Get(ctx, cacheKey, &user)
	if err == nil && found {
		return s.present.user(&user), nil
	}

	dbUser, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.present.user(dbUser)

	// Store in cache (ignore errors - cache is best effort)
	_ = s.cache.Set(ctx, cacheKey, dbUser, cache.UserTTL)

	return dbUser, nil
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s.present.user(&users[i])
	}
	return users, nil
}

// UpdateProfile applies profile fields and an optional new profile image.
// The image is swapped in only after the field update succeeds, and the
// replaced image is deleted only once the new key is stored.
func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest, image *storage.Upload) (*models.User, error) {
	var newKeys []string
	if image != nil {
		keys, err := s.images.SaveAll(ctx, []storage.Upload{*image})
		if err != nil {
			return nil, err
		}
		newKeys = keys
	}

	if req != nil && req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}

	var (
		user *models.User
		err  error
	)
	if req != nil && hasProfileChanges(req) {
		user, err = s.repo.Update(ctx, uid, req)
		if err != nil {
			s.images.DeleteAll(ctx, newKeys)
			return nil, err
		}
	}

	if len(newKeys) > 0 {
		previous, err := s.repo.SetProfileImage(ctx, uid, newKeys[0])
		if err != nil {
			s.images.DeleteAll(ctx, newKeys)
			if user != nil {
				invalidate(ctx, s.cache, cache.UserCacheKey(uid))
			}
			return nil, err
		}
		if previous != "" && previous != newKeys[0] {
			s.images.DeleteAll(ctx, []string{previous})
		}
		if user != nil {
			user.ProfileImage = newKeys[0]
		}
	}

	if user == nil {
		if user, err = s.repo.FindByUID(ctx, uid); err != nil {
			return nil, err
		}
	}

	invalidate(ctx, s.cache, cache.UserCacheKey(uid))

	return s.present.user(user), nil
}

func hasProfileChanges(req *models.UpdateProfileRequest) bool {
	return req.Email != nil || req.Name != nil || req.EmailNotifications != nil ||
		req.PushNotifications != nil || req.Locale != nil || req.Currency != nil
}

// DeleteProfile removes the account, revokes its sessions, and takes back its likes.
// Likes are released from the wishlist the document held when it was removed,
// so a toggle racing the delete cannot leave a like behind.
func (s *UserService) DeleteProfile(ctx context.Context, uid string) error {
	user, err := s.repo.Delete(ctx, uid)
	if err != nil {
		return err
	}

	invalidate(ctx, s.cache, cache.UserCacheKey(uid))

	if err := s.tokenStore.DeleteAllByUID(ctx, uid); err != nil {
		log.WithError(err).WithField("uid", uid).Warn("failed to revoke refresh tokens of deleted user")
	}

	for _, lid := range user.Wishlist {
		if _, err := s.listingRepo.AdjustLikes(ctx, lid, -1); err != nil && !errors.Is(err, apperrors.ErrListingNotFound) {
			log.WithError(err).WithField("l_id", lid).Warn("failed to release like of deleted user")
			continue
		}
		invalidate(ctx, s.cache, cache.ListingCacheKey(lid))
	}

	if user.ProfileImage != "" && s.images != nil {
		s.images.DeleteAll(ctx, []string{user.ProfileImage})
	}

	log.WithField("uid", uid).Info("user deleted")
	return nil
}

// ChangeOwnRole switches the caller between the self-assignable roles.
func (s *UserService) ChangeOwnRole(ctx context.Context, uid string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	if !role.SelfAssignable() {
		return nil, apperrors.ErrRoleNotAssignable
	}
	return s.updateRole(ctx, uid, role)
}

// AssignRole sets any role on another user. The caller must be an admin.
func (s *UserService) AssignRole(ctx context.Context, actor models.Actor, uid string, role models.Role) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}
	if !role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}

	user, err := s.updateRole(ctx, uid, role)
	if err != nil {
		return nil, err
	}

	queue.Enqueue(s.jobs, queue.NotificationJob(uid, models.NotificationSystem,
		"Role updated", fmt.Sprintf("An administrator set your role to %s. Sign in again to apply it.", role), 0))

	return user, nil
}

func (s *UserService) updateRole(ctx context.Context, uid string, role models.Role) (*models.User, error) {
	user, err := s.repo.UpdateRole(ctx, uid, role)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, cache.UserCacheKey(uid))

	log.WithFields(log.Fields{"uid": uid, "role": role}).Info("user role changed")
	return s.present.user(user), nil
}

// Notifications returns the user's notifications, newest first.
func (s *UserService) Notifications(ctx context.Context, uid string) ([]models.Notification, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := make([]models.Notification, 0, len(user.Notifications))
	for i := len(user.Notifications) - 1; i >= 0; i-- {
		out = append(out, user.Notifications[i])
	}
	return out, nil
}

func (s *UserService) MarkNotificationRead(ctx context.Context, uid, notificationID string) error {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return apperrors.ErrNotificationNotFound
	}
	return s.repo.MarkNotificationRead(ctx, uid, id)
}

func (s *UserService) MarkAllNotificationsRead(ctx context.Context, uid string) error {
	return s.repo.MarkAllNotificationsRead(ctx, uid)
}

// Activity returns the user's activity log, newest first.
func (s *UserService) Activity(ctx context.Context, uid string) ([]models.ActivityEntry, error) {
	user, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := make([]models.ActivityEntry, 0, len(user.Activity))
	for i := len(user.Activity) - 1; i >= 0; i-- {
		out = append(out, user.Activity[i])
	}
	return out, nil
}
