//go:build api

package testdb

import (
	"context"
	"time"

	"micasa/internal/cache"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RedisContainer wraps a Redis testcontainer for API tests.
type RedisContainer struct {
	Container testcontainers.Container
	URI       string
	Cache     *cache.Redis
}

// SetupRedis starts a Redis testcontainer and connects the application cache to it.
func SetupRedis(ctx context.Context) (*RedisContainer, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
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

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	uri := host + ":" + port.Port()

	redisCache, err := cache.NewRedis(ctx, uri)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &RedisContainer{
		Container: container,
		URI:       uri,
		Cache:     redisCache,
	}, nil
}

// Cleanup terminates the Redis container.
func (rc *RedisContainer) Cleanup(ctx context.Context) error {
	if rc.Cache != nil {
		rc.Cache.Close()
	}
	if rc.Container != nil {
		return rc.Container.Terminate(ctx)
	}
	return nil
}

// FlushDB clears cached listings, profiles and refresh-token families.
func (rc *RedisContainer) FlushDB(ctx context.Context) error {
	return rc.Cache.Client().FlushDB(ctx).Err()
}
