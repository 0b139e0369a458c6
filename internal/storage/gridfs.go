package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	apperrors "micasa/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStorage keeps objects in a MongoDB GridFS bucket, addressed by filename.
type GridFSStorage struct {
	bucket *gridfs.Bucket
}

// NewGridFSStorage wraps an opened bucket.
func NewGridFSStorage(bucket *gridfs.Bucket) *GridFSStorage {
	return &GridFSStorage{bucket: bucket}
}

type gridFSFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

func (g *GridFSStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := g.bucket.UploadFromStream(key, body, opts); err != nil {
		return fmt.Errorf("upload %s to gridfs: %w", key, err)
	}
	return nil
}

func (g *GridFSStorage) Get(ctx context.Context, key string) (*Object, error) {
	files, err := g.files(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.ErrObjectNotFound
	}
	// Most recent revision wins, like OpenDownloadStreamByName.
	file := files[len(files)-1]

	stream, err := g.bucket.OpenDownloadStream(file.ID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, apperrors.ErrObjectNotFound
		}
		return nil, err
	}

	return &Object{
		Body:        stream,
		ContentType: file.Metadata.ContentType,
		Size:        file.Length,
	}, nil
}

func (g *GridFSStorage) Delete(ctx context.Context, key string) error {
	files, err := g.files(ctx, key)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := g.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete %s from gridfs: %w", key, err)
		}
	}
	return nil
}

// files returns every revision stored under key, oldest first.
func (g *GridFSStorage) files(ctx context.Context, key string) ([]gridFSFile, error) {
	opts := options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: 1}})

	cursor, err := g.bucket.FindContext(ctx, bson.M{"filename": key}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []gridFSFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}
