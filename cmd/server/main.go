package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"micasa/internal/authz"
	"micasa/internal/cache"
	"micasa/internal/config"
	"micasa/internal/database"
	"micasa/internal/events"
	"micasa/internal/handler"
	"micasa/internal/middleware"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/internal/router"
	"micasa/internal/service"
	"micasa/internal/storage"
	"micasa/internal/validator"
	"micasa/pkg/auth"
	"micasa/pkg/obs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"
)

// @title           MiCasa API
// @version         1.0
// @description     Real-estate listing marketplace: listings, reviews, wishlists and role-based accounts.

// @contact.name    API Support
// @contact.email   support@example.com

// @host            localhost:8080
// @BasePath        /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

const serviceName = "micasa-api"

func main() {
	// Load configuration
	cfg := config.Load()
	if err := obs.ConfigureLogging(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	log.Info("Configuration loaded")

	// Register custom validators
	validator.RegisterCustomValidators()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	if cfg.OTelEndpoint != "" {
		shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTelEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
		defer func() {
			tctx, tcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer tcancel()
			if err := shutdownTracer(tctx); err != nil {
				log.WithError(err).Warn("Tracer shutdown error")
			}
		}()
		log.WithField("endpoint", cfg.OTelEndpoint).Info("Tracing enabled")
	}

	// Database
	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	if err := repository.EnsureIndexes(ctx, mongoDB.Database); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Redis Cache
	redisCache, err := cache.NewRedis(ctx, cfg.RedisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Image storage
	store, err := storage.Open(ctx, cfg.StorageBackend, cfg.S3(), mongoDB.UploadsBucket)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.StorageBackend, err)
	}
	images := storage.NewImages(store, cfg.MaxUploadBytes)

	// Domain events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = rabbit
		log.WithField("exchange", cfg.RabbitExchange).Info("Publishing domain events")
	}
	defer publisher.Close()

	// Auth
	jwtManager := auth.NewJWTManager(cfg.AccessTokenSecret, cfg.AccessTokenExpiry)
	tokenStore := cache.NewRefreshTokenStore(redisCache)
	authorizer := authz.NewLocalAuthorizer()

	// Repository layer
	userRepo := repository.NewUserRepository(mongoDB.Database)
	listingRepo := repository.NewListingRepository(mongoDB.Database)
	reviewRepo := repository.NewReviewRepository(mongoDB.Database)
	counterRepo := repository.NewCounterRepository(mongoDB.Database)

	// Activity and notification queue
	jobs := queue.NewMemoryQueue(cfg.ActivityQueueCapacity)
	processor := queue.NewProcessor(jobs, userRepo, cfg.ActivityWorkers)

	// Service layer
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:        userRepo,
		TokenStore:      tokenStore,
		JWTManager:      jwtManager,
		TokenGenerator:  auth.NewRefreshTokenGenerator(),
		Hasher:          auth.NewBcryptHasher(bcrypt.DefaultCost),
		Authorizer:      authorizer,
		RefreshTokenTTL: cfg.RefreshTokenExpiry,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:      userRepo,
		ListingRepo:   listingRepo,
		Cache:         redisCache,
		TokenStore:    tokenStore,
		Images:        images,
		Jobs:          jobs,
		Authorizer:    authorizer,
		PublicBaseURL: cfg.PublicBaseURL,
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
		PublicBaseURL: cfg.PublicBaseURL,
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
		PublicBaseURL: cfg.PublicBaseURL,
	})

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Router
	r := router.Setup(&router.Config{
		AuthHandler:     handler.NewAuthHandler(authService),
		UserHandler:     handler.NewUserHandler(userService, authService),
		ListingHandler:  handler.NewListingHandler(listingService),
		ReviewHandler:   handler.NewReviewHandler(reviewService),
		WishlistHandler: handler.NewWishlistHandler(wishlistService),
		UploadHandler:   handler.NewUploadHandler(images),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"mongo": mongoDB,
			"redis": redisCache,
		}),
		TokenManager:       jwtManager,
		Authorizer:         authorizer,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Metrics:            middleware.NewHTTPMetrics(reg),
		Gatherer:           reg,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Start activity processor
	processor.Start(ctx)

	// Create HTTP server for graceful shutdown support
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithField("addr", addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first (drain connections)
	log.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	// Stop activity processor (drains queued jobs, waits for workers)
	log.Info("Stopping activity processor...")
	processor.Stop()
	cancel()

	log.Info("Server shutdown complete")
}
