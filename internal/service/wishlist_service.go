package service

import (
	"context"
	"fmt"

	"micasa/internal/cache"
	apperrors "micasa/internal/errors"
	"micasa/internal/events"
	"micasa/internal/models"
	"micasa/internal/queue"
	"micasa/internal/repository"

	log "github.com/sirupsen/logrus"
)

// maxToggleAttempts bounds retries when a concurrent toggle by the same user
// flips membership between the conditional pull and push.
const maxToggleAttempts = 3

// WishlistService keeps a user's wishlist and the listings' like counters in step.
type WishlistService struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	cache       cache.Cache
	jobs        queue.Queue
	publisher   events.Publisher
	present     presenter
}

// WishlistServiceConfig holds configuration for WishlistService.
type WishlistServiceConfig struct {
	UserRepo      repository.UserRepository
	ListingRepo   repository.ListingRepository
	Cache         cache.Cache
	Jobs          queue.Queue
	Publisher     events.Publisher
	PublicBaseURL string
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(cfg WishlistServiceConfig) *WishlistService {
	return &WishlistService{
		userRepo:    cfg.UserRepo,
		listingRepo: cfg.ListingRepo,
		cache:       cfg.Cache,
		jobs:        cfg.Jobs,
		publisher:   cfg.Publisher,
		present:     presenter{baseURL: cfg.PublicBaseURL},
	}
}

// Toggle flips the listing's membership in the user's wishlist and moves the
// like counter by exactly one in the same direction. Only the request whose
// conditional update changed the wishlist adjusts likes.
func (s *WishlistService) Toggle(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error) {
	if lid <= 0 {
		return nil, apperrors.ErrInvalidListingID
	}
	listing, err := s.listingRepo.FindByLID(ctx, lid)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		removed, err := s.userRepo.RemoveFromWishlist(ctx, uid, lid)
		if err != nil {
			return nil, fmt.Errorf("remove from wishlist: %w", err)
		}
		if removed {
			return s.afterFlip(ctx, uid, listing, false)
		}

		added, err := s.userRepo.AddToWishlist(ctx, uid, lid)
		if err != nil {
			return nil, fmt.Errorf("add to wishlist: %w", err)
		}
		if added {
			return s.afterFlip(ctx, uid, listing, true)
		}
	}

	// Neither update matched: either the user is gone or toggles keep racing.
	if _, err := s.userRepo.FindByUID(ctx, uid); err != nil {
		return nil, err
	}
	return nil, apperrors.ErrWishlistConflict
}

func (s *WishlistService) afterFlip(ctx context.Context, uid string, listing *models.Listing, added bool) (*models.WishlistStatus, error) {
	lid := listing.LID
	delta := -1
	if added {
		delta = 1
	}

	likes, err := s.listingRepo.AdjustLikes(ctx, lid, delta)
	if err != nil {
		s.revertFlip(ctx, uid, lid, added)
		return nil, fmt.Errorf("adjust likes of listing %d: %w", lid, err)
	}

	invalidate(ctx, s.cache, cache.ListingCacheKey(lid), cache.UserCacheKey(uid))

	action := models.ActivityWishlistRemove
	if added {
		action = models.ActivityWishlistAdd
		if listing.OwnerUID != "" && listing.OwnerUID != uid {
			queue.Enqueue(s.jobs, queue.NotificationJob(listing.OwnerUID, models.NotificationLike,
				"New like", fmt.Sprintf("Someone saved %q to their wishlist", listing.Title), lid))
		}
	}
	queue.Enqueue(s.jobs, queue.ActivityJob(uid, action, lid, listing.Title))
	events.Emit(ctx, s.publisher, events.New(events.WishlistToggled, lid, uid, map[string]any{
		"inWishlist": added,
		"likes":      likes,
	}))

	return &models.WishlistStatus{ListingID: lid, InWishlist: added, Likes: likes}, nil
}

// revertFlip undoes a membership change whose likes update failed.
func (s *WishlistService) revertFlip(ctx context.Context, uid string, lid int64, added bool) {
	var err error
	if added {
		_, err = s.userRepo.RemoveFromWishlist(ctx, uid, lid)
	} else {
		_, err = s.userRepo.AddToWishlist(ctx, uid, lid)
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"uid": uid, "l_id": lid}).Error("failed to revert wishlist change")
	}
}

// Status reports membership and likes without changing anything.
func (s *WishlistService) Status(ctx context.Context, uid string, lid int64) (*models.WishlistStatus, error) {
	if lid <= 0 {
		return nil, apperrors.ErrInvalidListingID
	}
	likes, err := s.listingRepo.LikesOf(ctx, lid)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &models.WishlistStatus{ListingID: lid, InWishlist: user.InWishlist(lid), Likes: likes}, nil
}

// List returns the wishlisted listings that still exist.
func (s *WishlistService) List(ctx context.Context, uid string) ([]models.Listing, error) {
	user, err := s.userRepo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	listings, err := s.listingRepo.FindByLIDs(ctx, user.Wishlist)
	if err != nil {
		return nil, err
	}
	return s.present.listings(listings), nil
}
