package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"listings": {
			{Keys: bson.D{{Key: "l_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("l_id_unique")},
			{Keys: bson.D{{Key: "ownerUid", Value: 1}}, Options: options.Index().SetName("owner_uid")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
		},
		"reviews": {
			{Keys: bson.D{{Key: "l_id", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("l_id_created_at")},
		},
		"users": {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uid_unique")},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "wishlist", Value: 1}}, Options: options.Index().SetName("wishlist")},
		},
	}

	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
