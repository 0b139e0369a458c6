// Package database provides database connection and management.
package database

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ListingsCollection = "listings"
	ReviewsCollection  = "reviews"
	UsersCollection    = "users"
	CountersCollection = "counters"
	UploadsBucketName  = "uploads"
)

// MongoDB holds the database connection
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB and verifies the connection with a ping.
func NewMongoDB(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.WithField("database", dbName).Info("Connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Close disconnects from MongoDB
func (m *MongoDB) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// Ping reports whether the server is reachable; used by the health check.
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Collection returns a collection from the database
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// UploadsBucket opens the GridFS bucket that holds uploaded images.
func (m *MongoDB) UploadsBucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(m.Database, options.GridFSBucket().SetName(UploadsBucketName))
}
