package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListingCounter names the sequence that hands out listing ids.
const ListingCounter = "listings"

// CounterRepository hands out monotonically increasing sequence values.
type CounterRepository interface {
	// Next atomically increments the named sequence and returns the new value.
	Next(ctx context.Context, name string) (int64, error)
	// Sync raises the sequence to at least the given value. It never lowers it.
	Sync(ctx context.Context, name string, atLeast int64) error
}

type counterRepository struct {
	collection *mongo.Collection
}

// NewCounterRepository creates a new CounterRepository
func NewCounterRepository(db *mongo.Database) CounterRepository {
	return &counterRepository{
		collection: db.Collection("counters"),
	}
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (r *counterRepository) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&c)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time upserts raced; the document exists now.
		err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&c)
	}
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func (r *counterRepository) Sync(ctx context.Context, name string, atLeast int64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": atLeast}},
		options.Update().SetUpsert(true),
	)
	return err
}
