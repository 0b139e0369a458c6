package service

import (
	"context"
	"fmt"
	"strings"

	"micasa/internal/authz"
	"micasa/internal/cache"
	apperrors "micasa/internal/errors"
	"micasa/internal/events"
	"micasa/internal/filter"
	"micasa/internal/models"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/internal/storage"

	log "github.com/sirupsen/logrus"
)

// ListingService handles business logic for listings.
type ListingService struct {
	listingRepo repository.ListingRepository
	reviewRepo  repository.ReviewRepository
	userRepo    repository.UserRepository
	counterRepo repository.CounterRepository
	cache       cache.Cache
	images      *storage.Images
	authorizer  authz.Authorizer
	jobs        queue.Queue
	publisher   events.Publisher
	present     presenter
}

// ListingServiceConfig holds configuration for ListingService.
type ListingServiceConfig struct {
	ListingRepo   repository.ListingRepository
	ReviewRepo    repository.ReviewRepository
	UserRepo      repository.UserRepository
	CounterRepo   repository.CounterRepository
	Cache         cache.Cache
	Images        *storage.Images
	Authorizer    authz.Authorizer
	Jobs          queue.Queue
	Publisher     events.Publisher
	PublicBaseURL string
}

// NewListingService creates a new ListingService.
func NewListingService(cfg ListingServiceConfig) *ListingService {
	return &ListingService{
		listingRepo: cfg.ListingRepo,
		reviewRepo:  cfg.ReviewRepo,
		userRepo:    cfg.UserRepo,
		counterRepo: cfg.CounterRepo,
		cache:       cfg.Cache,
		images:      cfg.Images,
		authorizer:  cfg.Authorizer,
		jobs:        cfg.Jobs,
		publisher:   cfg.Publisher,
		present:     presenter{authorizer: cfg.Authorizer, baseURL: cfg.PublicBaseURL},
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func normalizeInput(input *models.ListingInput) {
	input.Title = trimmed(input.Title)
	input.Location = trimmed(input.Location)
	input.Description = trimmed(input.Description)
	input.Price = trimmed(input.Price)
}

// Create stores the images, takes the next l_id from the counter, and inserts the listing.
func (s *ListingService) Create(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
	if !s.authorizer.CanPerform(actor.Role, authz.ActionListingCreate) {
		return nil, apperrors.ErrForbidden
	}

	normalizeInput(input)
	if input.Title == nil || *input.Title == "" {
		return nil, apperrors.ErrListingTitleMissing
	}

	keys, err := s.images.SaveAll(ctx, images)
	if err != nil {
		return nil, err
	}

	lid, err := s.counterRepo.Next(ctx, repository.ListingCounter)
	if err != nil {
		s.images.DeleteAll(ctx, keys)
		return nil, fmt.Errorf("allocate listing id: %w", err)
	}

	listing := &models.Listing{
		LID:       lid,
		OwnerUID:  actor.UID,
		Title:     *input.Title,
		Amenities: input.Amenities,
		ImageURLs: keys,
	}
	if input.Location != nil {
		listing.Location = *input.Location
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		s.images.DeleteAll(ctx, keys)
		return nil, fmt.Errorf("insert listing %d: %w", lid, err)
	}

	log.WithFields(log.Fields{"l_id": lid, "owner": actor.UID}).Info("listing created")
	queue.Enqueue(s.jobs, queue.ActivityJob(actor.UID, models.ActivityListingCreated, lid, listing.Title))
	events.Emit(ctx, s.publisher, events.New(events.ListingCreated, lid, actor.UID, map[string]any{"title": listing.Title}))

	return s.present.listing(listing), nil
}

// Get returns a listing by l_id (with caching).
func (s *ListingService) Get(ctx context.Context, lid int64) (*models.Listing, error) {
	cacheKey := cache.ListingCacheKey(lid)
	var listing models.Listing
	found, err := s.cache.Get(ctx, cacheKey, &listing)
	if err == nil && found {
		return s.present.listing(&listing), nil
	}

	dbListing, err := s.listingRepo.FindByLID(ctx, lid)
	if err != nil {
		return nil, err
	}
	s.present.listing(dbListing)

	_ = s.cache.Set(ctx, cacheKey, dbListing, cache.ListingTTL)

	return dbListing, nil
}

// List returns the page of listings matching query, newest first.
func (s *ListingService) List(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error) {
	criteria, err := filter.FromQuery(query)
	if err != nil {
		return nil, err
	}

	// Location is narrowed in the database; Apply still checks it so both agree.
	all, err := s.listingRepo.FindAll(ctx, criteria.Location)
	if err != nil {
		return nil, err
	}

	items, pagination := filter.Page(filter.Apply(all, criteria), query.Page, query.Limit)

	return &models.ListingListResponse{
		Items:      s.present.listings(items),
		Pagination: pagination,
	}, nil
}

// Update overwrites the given fields and appends new images. Only the owner or an admin may update.
func (s *ListingService) Update(ctx context.Context, actor models.Actor, lid int64, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
	existing, err := s.listingRepo.FindByLID(ctx, lid)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanModifyListing(actor.UID, actor.Role, existing) {
		return nil, apperrors.ErrNotListingOwner
	}

	normalizeInput(input)
	if input.Title != nil && *input.Title == "" {
		return nil, apperrors.ErrListingTitleMissing
	}

	keys, err := s.images.SaveAll(ctx, images)
	if err != nil {
		return nil, err
	}

	updated, err := s.listingRepo.Update(ctx, lid, &models.ListingUpdate{ListingInput: *input, AppendImages: keys})
	if err != nil {
		s.images.DeleteAll(ctx, keys)
		return nil, err
	}

	invalidate(ctx, s.cache, cache.ListingCacheKey(lid))
	queue.Enqueue(s.jobs, queue.ActivityJob(actor.UID, models.ActivityListingUpdated, lid, updated.Title))
	events.Emit(ctx, s.publisher, events.New(events.ListingUpdated, lid, actor.UID, map[string]any{"newImages": len(keys)}))

	return s.present.listing(updated), nil
}

// Delete removes a listing and cascades to its reviews, wishlist entries and images.
// Steps after the listing itself is gone are best effort; failures come back as warnings.
func (s *ListingService) Delete(ctx context.Context, actor models.Actor, lid int64) (*models.DeleteListingResult, error) {
	existing, err := s.listingRepo.FindByLID(ctx, lid)
	if err != nil {
		return nil, err
	}
	if !s.authorizer.CanModifyListing(actor.UID, actor.Role, existing) {
		return nil, apperrors.ErrNotListingOwner
	}

	if err := s.listingRepo.Delete(ctx, lid); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, cache.ListingCacheKey(lid))

	result := &models.DeleteListingResult{ListingID: lid}
	logger := log.WithFields(log.Fields{"l_id": lid, "actor": actor.UID})

	if n, err := s.reviewRepo.DeleteByLID(ctx, lid); err != nil {
		logger.WithError(err).Error("failed to delete reviews of deleted listing")
		result.Warnings = append(result.Warnings, "reviews could not be deleted")
	} else {
		result.ReviewsDeleted = n
	}

	if n, err := s.userRepo.PullFromAllWishlists(ctx, lid); err != nil {
		logger.WithError(err).Error("failed to pull deleted listing from wishlists")
		result.Warnings = append(result.Warnings, "wishlists could not be updated")
	} else {
		result.WishlistsPulled = n
	}

	if failed := s.images.DeleteAll(ctx, existing.ImageURLs); failed > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d image(s) could not be deleted", failed))
	}

	logger.WithFields(log.Fields{
		"reviews":   result.ReviewsDeleted,
		"wishlists": result.WishlistsPulled,
	}).Info("listing deleted")

	queue.Enqueue(s.jobs, queue.ActivityJob(actor.UID, models.ActivityListingDeleted, lid, existing.Title))
	events.Emit(ctx, s.publisher, events.New(events.ListingDeleted, lid, actor.UID, nil))

	return result, nil
}

// RecomputeRating rebuilds the rating aggregate from the stored reviews.
func (s *ListingService) RecomputeRating(ctx context.Context, lid int64) (*models.Listing, error) {
	if _, err := s.listingRepo.FindByLID(ctx, lid); err != nil {
		return nil, err
	}

	stats, err := s.reviewRepo.Stats(ctx, lid)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews of listing %d: %w", lid, err)
	}

	listing, err := s.listingRepo.SetRatingStats(ctx, lid, stats)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, cache.ListingCacheKey(lid))

	log.WithFields(log.Fields{"l_id": lid, "reviews": stats.Count, "rating": listing.Rating}).Info("listing rating recomputed")
	return s.present.listing(listing), nil
}
