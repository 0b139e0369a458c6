package repository

import (
	"context"
	"time"

	"micasa/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByLID(ctx context.Context, lid int64) ([]models.Review, error)
	DeleteByLID(ctx context.Context, lid int64) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Stats aggregates the sum and count of ratings for a listing.
	Stats(ctx context.Context, lid int64) (models.RatingStats, error)
}

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{
		collection: db.Collection("reviews"),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		return err
	}

	review.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByLID returns a listing's reviews, newest first.
func (r *reviewRepository) FindByLID(ctx context.Context, lid int64) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"l_id": lid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}

	if reviews == nil {
		reviews = []models.Review{}
	}

	return reviews, nil
}

// DeleteByLID removes every review of a listing and reports how many were removed.
func (r *reviewRepository) DeleteByLID(ctx context.Context, lid int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"l_id": lid})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Delete removes one review. Deleting a missing review is not an error.
func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *reviewRepository) Stats(ctx context.Context, lid int64) (models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"l_id": lid}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"sum":   bson.M{"$sum": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sum   int `bson:"sum"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.RatingStats{}, err
	}
	if len(rows) == 0 {
		return models.RatingStats{}, nil
	}
	return models.RatingStats{Sum: rows[0].Sum, Count: rows[0].Count}, nil
}
