//go:build api

package testdb

import (
	"context"
	"time"

	"micasa/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// MinIOAccessKey is the default access key for test MinIO.
	MinIOAccessKey = "minioadmin"
	// MinIOSecretKey is the default secret key for test MinIO.
	MinIOSecretKey = "minioadmin"
	// MinIOBucket is the bucket listing and profile images land in.
	MinIOBucket = "micasa-test"
)

// MinIOContainer wraps a MinIO testcontainer for API tests.
type MinIOContainer struct {
	Container testcontainers.Container
	Endpoint  string
	// Client inspects the bucket directly, independent of the storage package.
	Client *s3.Client
}

// SetupMinIO starts a MinIO testcontainer.
func SetupMinIO(ctx context.Context) (*MinIOContainer, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     MinIOAccessKey,
				"MINIO_ROOT_PASSWORD": MinIOSecretKey,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	endpoint := host + ":" + port.Port()

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(MinIOAccessKey, MinIOSecretKey, "")),
	)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("http://" + endpoint)
		o.UsePathStyle = true
	})

	return &MinIOContainer{
		Container: container,
		Endpoint:  endpoint,
		Client:    client,
	}, nil
}

// S3Config returns the settings the application storage uses for this container.
func (mc *MinIOContainer) S3Config() storage.S3Config {
	return storage.S3Config{
		Endpoint:  mc.Endpoint,
		AccessKey: MinIOAccessKey,
		SecretKey: MinIOSecretKey,
		Bucket:    MinIOBucket,
	}
}

// Cleanup terminates the MinIO container.
func (mc *MinIOContainer) Cleanup(ctx context.Context) error {
	if mc.Container != nil {
		return mc.Container.Terminate(ctx)
	}
	return nil
}

// ClearBucket removes all objects from the bucket, one listing page at a time.
func (mc *MinIOContainer) ClearBucket(ctx context.Context) error {
	keys, err := mc.Keys(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}

		_, err := mc.Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(MinIOBucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Keys lists every object key in the bucket.
func (mc *MinIOContainer) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(mc.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(MinIOBucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// ObjectExists checks if an object exists in the bucket.
func (mc *MinIOContainer) ObjectExists(ctx context.Context, key string) bool {
	_, err := mc.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(MinIOBucket),
		Key:    aws.String(key),
	})
	return err == nil
}
