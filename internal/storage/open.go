package storage

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// Backend names accepted by Open.
const (
	BackendS3     = "s3"
	BackendGridFS = "gridfs"
)

// Open returns the backend named kind. GridFS uses the bucket returned by
// gridFSBucket; S3 creates its bucket when missing.
func Open(ctx context.Context, kind string, s3cfg S3Config, gridFSBucket func() (*gridfs.Bucket, error)) (Storage, error) {
	switch kind {
	case BackendGridFS:
		bucket, err := gridFSBucket()
		if err != nil {
			return nil, fmt.Errorf("open gridfs bucket: %w", err)
		}
		log.Info("Storing images in GridFS")
		return NewGridFSStorage(bucket), nil
	case BackendS3:
		client, err := NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
