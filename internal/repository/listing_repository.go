package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByLID(ctx context.Context, lid int64) (*models.Listing, error)
	FindByLIDs(ctx context.Context, lids []int64) ([]models.Listing, error)
	FindAll(ctx context.Context, location string) ([]models.Listing, error)
	MaxLID(ctx context.Context) (int64, error)
	Update(ctx context.Context, lid int64, update *models.ListingUpdate) (*models.Listing, error)
	Delete(ctx context.Context, lid int64) error
	// ApplyReview folds one rating into the listing's aggregate in a single document update.
	ApplyReview(ctx context.Context, lid int64, rating int) (*models.Listing, error)
	SetRatingStats(ctx context.Context, lid int64, stats models.RatingStats) (*models.Listing, error)
	// AdjustLikes adds delta to the like counter, never going below zero, and returns the new value.
	AdjustLikes(ctx context.Context, lid int64, delta int) (int, error)
	LikesOf(ctx context.Context, lid int64) (int, error)
}

type listingRepository struct {
	collection *mongo.Collection
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *mongo.Database) ListingRepository {
	return &listingRepository{
		collection: db.Collection("listings"),
	}
}

// RoundRating rounds sum/count half-up to one decimal place, or 0 without reviews.
// It matches the rating computed by the update pipelines below.
func RoundRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return float64((20*sum+count)/(2*count)) / 10
}

// ratingStage recomputes rating from ratingSum and reviewCount using the same
// integer arithmetic as RoundRating.
func ratingStage() bson.D {
	return bson.D{{Key: "$set", Value: bson.M{
		"rating": bson.M{"$cond": bson.A{
			bson.M{"$lte": bson.A{"$reviewCount", 0}},
			0.0,
			bson.M{"$divide": bson.A{
				bson.M{"$floor": bson.M{"$divide": bson.A{
					bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{"$ratingSum", 20}}, "$reviewCount"}},
					bson.M{"$multiply": bson.A{"$reviewCount", 2}},
				}}},
				10,
			}},
		}},
		"updatedAt": "$$NOW",
	}}}
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrListingNotFound
	}
	return err
}

// Create inserts a new listing. The caller assigns LID.
func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.Likes == nil {
		zero := 0
		listing.Likes = &zero
	}
	if listing.Amenities == nil {
		listing.Amenities = []string{}
	}
	if listing.ImageURLs == nil {
		listing.ImageURLs = []string{}
	}

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return err
	}

	listing.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *listingRepository) FindByLID(ctx context.Context, lid int64) (*models.Listing, error) {
	var listing models.Listing
	if err := r.collection.FindOne(ctx, bson.M{"l_id": lid}).Decode(&listing); err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

// FindByLIDs returns the listings that still exist among lids, newest first.
func (r *listingRepository) FindByLIDs(ctx context.Context, lids []int64) ([]models.Listing, error) {
	if len(lids) == 0 {
		return []models.Listing{}, nil
	}
	return r.find(ctx, bson.M{"l_id": bson.M{"$in": lids}})
}

// FindAll returns listings newest first. A non-empty location narrows the
// result to case-insensitive substring matches.
func (r *listingRepository) FindAll(ctx context.Context, location string) ([]models.Listing, error) {
	filter := bson.M{}
	if location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(location), Options: "i"}
	}
	return r.find(ctx, filter)
}

func (r *listingRepository) find(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "l_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}

	// Return empty slice instead of nil
	if listings == nil {
		listings = []models.Listing{}
	}

	return listings, nil
}

// MaxLID returns the highest l_id in use, or 0 for an empty collection.
func (r *listingRepository) MaxLID(ctx context.Context) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "l_id", Value: -1}}).
		SetProjection(bson.M{"l_id": 1})

	var doc struct {
		LID int64 `bson:"l_id"`
	}
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.LID, nil
}

// Update overwrites the fields present in update and appends new image keys.
func (r *listingRepository) Update(ctx context.Context, lid int64, update *models.ListingUpdate) (*models.Listing, error) {
	set := bson.M{"updatedAt": time.Now()}

	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Amenities != nil {
		set["amenities"] = update.Amenities
	}

	doc := bson.M{"$set": set}
	if len(update.AppendImages) > 0 {
		doc["$push"] = bson.M{"imageUrls": bson.M{"$each": update.AppendImages}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"l_id": lid}, doc, opts).Decode(&listing); err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (r *listingRepository) Delete(ctx context.Context, lid int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"l_id": lid})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return apperrors.ErrListingNotFound
	}

	return nil
}

func (r *listingRepository) ApplyReview(ctx context.Context, lid int64, rating int) (*models.Listing, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ratingSum":   bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$ratingSum", 0}}, rating}},
			"reviewCount": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$reviewCount", 0}}, 1}},
		}}},
		ratingStage(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"l_id": lid}, pipeline, opts).Decode(&listing); err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

// SetRatingStats replaces the aggregate with stats computed from the reviews collection.
func (r *listingRepository) SetRatingStats(ctx context.Context, lid int64, stats models.RatingStats) (*models.Listing, error) {
	update := bson.M{"$set": bson.M{
		"ratingSum":   stats.Sum,
		"reviewCount": stats.Count,
		"rating":      RoundRating(stats.Sum, stats.Count),
		"updatedAt":   time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"l_id": lid}, update, opts).Decode(&listing); err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (r *listingRepository) AdjustLikes(ctx context.Context, lid int64, delta int) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$likes", 0}}, delta}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes int `bson:"likes"`
	}
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"l_id": lid}, pipeline, opts).Decode(&doc); err != nil {
		return 0, notFound(err)
	}
	return doc.Likes, nil
}

func (r *listingRepository) LikesOf(ctx context.Context, lid int64) (int, error) {
	opts := options.FindOne().SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes *int `bson:"likes"`
	}
	if err := r.collection.FindOne(ctx, bson.M{"l_id": lid}, opts).Decode(&doc); err != nil {
		return 0, notFound(err)
	}
	if doc.Likes == nil {
		return 0, nil
	}
	return *doc.Likes, nil
}
