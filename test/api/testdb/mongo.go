//go:build api

package testdb

import (
	"context"
	"strings"
	"time"

	"micasa/internal/database"
	"micasa/internal/repository"

	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoContainer wraps a MongoDB testcontainer for API tests.
type MongoContainer struct {
	Container *mongodb.MongoDBContainer
	URI       string
	DB        *database.MongoDB
}

// SetupMongoDB starts a MongoDB testcontainer, connects the way the server does
// and creates the application indexes. Its lifecycle is owned by TestMain.
func SetupMongoDB(ctx context.Context, dbName string) (*MongoContainer, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := database.NewMongoDB(ctx, uri, dbName)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	if err := repository.EnsureIndexes(ctx, db.Database); err != nil {
		db.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &MongoContainer{
		Container: container,
		URI:       uri,
		DB:        db,
	}, nil
}

// Cleanup terminates the MongoDB container.
func (mc *MongoContainer) Cleanup(ctx context.Context) error {
	if mc.DB != nil {
		mc.DB.Close()
	}
	if mc.Container != nil {
		return mc.Container.Terminate(ctx)
	}
	return nil
}

// CleanupCollections empties every collection but keeps the indexes, so
// unique constraints on uid, email and l_id stay in force between tests.
func (mc *MongoContainer) CleanupCollections(ctx context.Context) error {
	collections, err := mc.DB.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return err
	}
	for _, name := range collections {
		if strings.HasPrefix(name, "system.") {
			continue
		}
		if _, err := mc.DB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
	}
	return nil
}
