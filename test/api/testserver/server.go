//go:build api

// Package testserver provides a fully wired test server for API integration tests.
package testserver

import (
	"context"
	"sync"
	"time"

	"micasa/internal/authz"
	"micasa/internal/cache"
	"micasa/internal/events"
	"micasa/internal/handler"
	"micasa/internal/middleware"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/internal/router"
	"micasa/internal/service"
	"micasa/internal/storage"
	"micasa/pkg/auth"
	"micasa/test/api/testdb"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TestAccessTokenSecret is the JWT secret used in tests.
	TestAccessTokenSecret = "test-secret-key-for-api-tests"
	// TestAccessTokenExpiry is the access token expiry time used in tests.
	TestAccessTokenExpiry = 15 * time.Minute
	// TestRefreshTokenExpiry is the refresh token expiry time used in tests.
	TestRefreshTokenExpiry = 7 * 24 * time.Hour
	// TestDBName is the database name used in tests.
	TestDBName = "micasa_api_test"
	// TestPublicBaseURL prefixes image URLs in responses.
	TestPublicBaseURL = "http://micasa.test"
	// TestMaxUploadBytes is the per-file upload cap.
	TestMaxUploadBytes = 5 << 20
)

// TestServer holds all dependencies for API integration tests.
type TestServer struct {
	// Router is the Gin engine for making HTTP requests.
	Router *gin.Engine

	// Containers
	MongoDB *testdb.MongoContainer
	Redis   *testdb.RedisContainer
	MinIO   *testdb.MinIOContainer

	// Repositories (for direct database access in tests)
	UserRepo    repository.UserRepository
	ListingRepo repository.ListingRepository
	ReviewRepo  repository.ReviewRepository
	CounterRepo repository.CounterRepository

	// Services (for direct service access in tests)
	AuthService     service.AuthServicer
	UserService     service.UserServicer
	ListingService  service.ListingServicer
	ReviewService   service.ReviewServicer
	WishlistService service.WishlistServicer

	JWTManager *auth.JWTManager
	Events     *RecordingPublisher

	jobs      *queue.MemoryQueue
	processor *queue.Processor
	cancel    context.CancelFunc
}

// New creates a new test server with all dependencies wired up.
func New(ctx context.Context) (*TestServer, error) {
	gin.SetMode(gin.TestMode)

	// Start containers
	mongoDB, err := testdb.SetupMongoDB(ctx, TestDBName)
	if err != nil {
		return nil, err
	}

	redisContainer, err := testdb.SetupRedis(ctx)
	if err != nil {
		_ = mongoDB.Cleanup(ctx)
		return nil, err
	}

	minioContainer, err := testdb.SetupMinIO(ctx)
	if err != nil {
		_ = mongoDB.Cleanup(ctx)
		_ = redisContainer.Cleanup(ctx)
		return nil, err
	}

	s3Client, err := storage.NewS3Client(ctx, minioContainer.S3Config())
	if err == nil {
		err = s3Client.EnsureBucket(ctx)
	}
	if err != nil {
		_ = mongoDB.Cleanup(ctx)
		_ = redisContainer.Cleanup(ctx)
		_ = minioContainer.Cleanup(ctx)
		return nil, err
	}
	images := storage.NewImages(s3Client, TestMaxUploadBytes)

	redisCache := redisContainer.Cache
	publisher := &RecordingPublisher{}

	// Auth
	jwtManager := auth.NewJWTManager(TestAccessTokenSecret, TestAccessTokenExpiry)
	tokenStore := cache.NewRefreshTokenStore(redisCache)
	authorizer := authz.NewLocalAuthorizer()

	// Repository layer
	db := mongoDB.DB.Database
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	jobs := queue.NewMemoryQueue(1000)
	processor := queue.NewProcessor(jobs, userRepo, 2)

	// Service layer
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:        userRepo,
		TokenStore:      tokenStore,
		JWTManager:      jwtManager,
		TokenGenerator:  auth.NewRefreshTokenGenerator(),
		Hasher:          auth.NewBcryptHasher(bcrypt.MinCost),
		Authorizer:      authorizer,
		RefreshTokenTTL: TestRefreshTokenExpiry,
		PublicBaseURL:   TestPublicBaseURL,
	})
	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:      userRepo,
		ListingRepo:   listingRepo,
		Cache:         redisCache,
		TokenStore:    tokenStore,
		Images:        images,
		Jobs:          jobs,
		Authorizer:    authorizer,
		PublicBaseURL: TestPublicBaseURL,
	})
	listingService := service.NewListingService(service.ListingServiceConfig{
		ListingRepo:   listingRepo,
		ReviewRepo:    reviewRepo,
		UserRepo:      userRepo,
		CounterRepo:   counterRepo,
		Cache:         redisCache,
		Images:        images,
		Authorizer:    authorizer,
		Jobs:          jobs,
		Publisher:     publisher,
		PublicBaseURL: TestPublicBaseURL,
	})
	reviewService := service.NewReviewService(service.ReviewServiceConfig{
		ReviewRepo:  reviewRepo,
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		Cache:       redisCache,
		Jobs:        jobs,
		Publisher:   publisher,
	})
	wishlistService := service.NewWishlistService(service.WishlistServiceConfig{
		UserRepo:      userRepo,
		ListingRepo:   listingRepo,
		Cache:         redisCache,
		Jobs:          jobs,
		Publisher:     publisher,
		PublicBaseURL: TestPublicBaseURL,
	})

	reg := prometheus.NewRegistry()

	// No rate limiter: tests issue many writes from one client.
	r := router.Setup(&router.Config{
		AuthHandler:     handler.NewAuthHandler(authService),
		UserHandler:     handler.NewUserHandler(userService, authService),
		ListingHandler:  handler.NewListingHandler(listingService),
		ReviewHandler:   handler.NewReviewHandler(reviewService),
		WishlistHandler: handler.NewWishlistHandler(wishlistService),
		UploadHandler:   handler.NewUploadHandler(images),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"mongo": mongoDB.DB,
			"redis": redisCache,
		}),
		TokenManager: jwtManager,
		Authorizer:   authorizer,
		Metrics:      middleware.NewHTTPMetrics(reg),
		Gatherer:     reg,
	})

	procCtx, cancel := context.WithCancel(context.Background())
	processor.Start(procCtx)

	return &TestServer{
		Router:          r,
		MongoDB:         mongoDB,
		Redis:           redisContainer,
		MinIO:           minioContainer,
		UserRepo:        userRepo,
		ListingRepo:     listingRepo,
		ReviewRepo:      reviewRepo,
		CounterRepo:     counterRepo,
		AuthService:     authService,
		UserService:     userService,
		ListingService:  listingService,
		ReviewService:   reviewService,
		WishlistService: wishlistService,
		JWTManager:      jwtManager,
		Events:          publisher,
		jobs:            jobs,
		processor:       processor,
		cancel:          cancel,
	}, nil
}

// Cleanup drains the activity queue and terminates all containers.
func (ts *TestServer) Cleanup(ctx context.Context) {
	if ts.processor != nil {
		ts.processor.Stop()
	}
	if ts.cancel != nil {
		ts.cancel()
	}
	if ts.MinIO != nil {
		_ = ts.MinIO.Cleanup(ctx)
	}
	if ts.Redis != nil {
		_ = ts.Redis.Cleanup(ctx)
	}
	if ts.MongoDB != nil {
		_ = ts.MongoDB.Cleanup(ctx)
	}
}

// PendingJobs reports how many activity jobs are still queued.
func (ts *TestServer) PendingJobs() int {
	return ts.jobs.Len()
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Types returns the routing keys published so far, in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// Reset forgets recorded events.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
