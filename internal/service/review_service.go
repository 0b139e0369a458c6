package service

import (
	"context"
	"fmt"
	"strings"

	"micasa/internal/cache"
	apperrors "micasa/internal/errors"
	"micasa/internal/events"
	"micasa/internal/models"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/pkg/gravatar"

	log "github.com/sirupsen/logrus"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService handles posting reviews and keeping listing ratings in step.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	cache       cache.Cache
	jobs        queue.Queue
	publisher   events.Publisher
}

// ReviewServiceConfig holds configuration for ReviewService.
type ReviewServiceConfig struct {
	ReviewRepo  repository.ReviewRepository
	ListingRepo repository.ListingRepository
	UserRepo    repository.UserRepository
	Cache       cache.Cache
	Jobs        queue.Queue
	Publisher   events.Publisher
}

// NewReviewService creates a new ReviewService.
func NewReviewService(cfg ReviewServiceConfig) *ReviewService {
	return &ReviewService{
		reviewRepo:  cfg.ReviewRepo,
		listingRepo: cfg.ListingRepo,
		userRepo:    cfg.UserRepo,
		cache:       cfg.Cache,
		jobs:        cfg.Jobs,
		publisher:   cfg.Publisher,
	}
}

// Create stores a review and folds its rating into the listing in one atomic
// update. If that update fails the review is deleted again.
func (s *ReviewService) Create(ctx context.Context, actor models.Actor, lid int64, req *models.CreateReviewRequest) (*models.ReviewResponse, error) {
	if lid <= 0 {
		return nil, apperrors.ErrInvalidListingID
	}
	if strings.TrimSpace(actor.Email) == "" {
		return nil, apperrors.ErrEmailMissing
	}
	if req.Rating < MinRating || req.Rating > MaxRating {
		return nil, apperrors.ErrInvalidRating
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, apperrors.ErrCommentMissing
	}

	listing, err := s.listingRepo.FindByLID(ctx, lid)
	if err != nil {
		return nil, err
	}

	// The token's email claim is stale after a profile edit until the next refresh.
	reviewer, err := s.userRepo.FindByUID(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	email := reviewer.Email

	review := &models.Review{
		LID:       lid,
		UserUID:   actor.UID,
		UserEmail: email,
		UserImage: gravatar.URL(email),
		Rating:    req.Rating,
		Comment:   comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	updated, err := s.listingRepo.ApplyReview(ctx, lid, req.Rating)
	if err != nil {
		logger := log.WithFields(log.Fields{"l_id": lid, "review": review.ID.Hex()})
		logger.WithError(err).Error("failed to apply review to listing, removing review")
		if delErr := s.reviewRepo.Delete(ctx, review.ID); delErr != nil {
			logger.WithError(delErr).Error("failed to remove orphaned review")
		}
		return nil, fmt.Errorf("apply review to listing %d: %w", lid, err)
	}

	invalidate(ctx, s.cache, cache.ListingCacheKey(lid))

	queue.Enqueue(s.jobs, queue.ActivityJob(actor.UID, models.ActivityReviewPosted, lid, fmt.Sprintf("rated %d", req.Rating)))
	if listing.OwnerUID != "" && listing.OwnerUID != actor.UID {
		queue.Enqueue(s.jobs, queue.NotificationJob(listing.OwnerUID, models.NotificationReview,
			"New review", fmt.Sprintf("%s rated %q %d out of %d", email, listing.Title, req.Rating, MaxRating), lid))
	}
	events.Emit(ctx, s.publisher, events.New(events.ReviewCreated, lid, actor.UID, map[string]any{
		"rating":        req.Rating,
		"averageRating": updated.Rating,
		"reviewCount":   updated.ReviewCount,
	}))

	return &models.ReviewResponse{
		Review:        *review,
		AverageRating: updated.Rating,
		ReviewCount:   updated.ReviewCount,
	}, nil
}

// List returns the reviews of an existing listing, newest first.
func (s *ReviewService) List(ctx context.Context, lid int64) ([]models.Review, error) {
	if lid <= 0 {
		return nil, apperrors.ErrInvalidListingID
	}
	if _, err := s.listingRepo.FindByLID(ctx, lid); err != nil {
		return nil, err
	}
	return s.reviewRepo.FindByLID(ctx, lid)
}
