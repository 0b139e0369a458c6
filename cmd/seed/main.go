package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"time"

	"micasa/internal/authz"
	"micasa/internal/cache"
	"micasa/internal/config"
	"micasa/internal/database"
	"micasa/internal/events"
	"micasa/internal/models"
	"micasa/internal/queue"
	"micasa/internal/repository"
	"micasa/internal/service"
	"micasa/internal/storage"
	"micasa/pkg/auth"
	"micasa/pkg/obs"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password123"

// SeedUser is a demo account.
type SeedUser struct {
	Email string
	Name  string
	Role  models.Role
}

// SeedListing is a demo listing and the reviews it receives.
type SeedListing struct {
	OwnerEmail  string
	Title       string
	Location    string
	Description string
	Price       string
	Amenities   []string
	Colors      []color.RGBA
	Reviews     []SeedReview
	LikedBy     []string
}

// SeedReview is posted through the review service so the rating aggregate is built the normal way.
type SeedReview struct {
	Email   string
	Rating  int
	Comment string
}

var seedUsers = []SeedUser{
	{Email: "hunter@example.com", Name: "Hana Hunter", Role: models.RoleHunter},
	{Email: "renter@example.com", Name: "Rafa Renter", Role: models.RoleHunter},
	{Email: "owner@example.com", Name: "Omar Owner", Role: models.RoleOwner},
	{Email: "mover@example.com", Name: "Mia Mover", Role: models.RoleMover},
	{Email: "admin@example.com", Name: "Ada Admin", Role: models.RoleAdmin},
}

var seedListings = []SeedListing{
	{
		OwnerEmail:  "owner@example.com",
		Title:       "Sunny loft near the park",
		Location:    "Austin, TX",
		Description: "Two bedrooms, one bath, big windows facing the park.",
		Price:       "$1,200/mo",
		Amenities:   []string{"wifi", "parking", "laundry"},
		Colors:      []color.RGBA{{R: 250, G: 200, B: 80, A: 255}, {R: 120, G: 180, B: 90, A: 255}},
		Reviews: []SeedReview{
			{Email: "hunter@example.com", Rating: 5, Comment: "Great light and a friendly owner."},
			{Email: "renter@example.com", Rating: 3, Comment: "Nice place, street parking is tight."},
		},
		LikedBy: []string{"hunter@example.com", "renter@example.com"},
	},
	{
		OwnerEmail:  "owner@example.com",
		Title:       "Quiet studio downtown",
		Location:    "Austin, TX",
		Description: "Compact studio, walking distance to everything.",
		Price:       "$850/mo",
		Amenities:   []string{"wifi", "gym"},
		Colors:      []color.RGBA{{R: 70, G: 110, B: 200, A: 255}},
		Reviews: []SeedReview{
			{Email: "renter@example.com", Rating: 4, Comment: "Small but very well kept."},
		},
		LikedBy: []string{"renter@example.com"},
	},
	{
		OwnerEmail:  "owner@example.com",
		Title:       "Family house with garden",
		Location:    "Guadalajara, JAL",
		Description: "Three bedrooms, two baths, private garden and garage.",
		Price:       "MXN 18,000/mes",
		Amenities:   []string{"garden", "parking", "pet friendly"},
		Colors:      []color.RGBA{{R: 40, G: 140, B: 60, A: 255}, {R: 200, G: 90, B: 60, A: 255}},
		Reviews: []SeedReview{
			{Email: "hunter@example.com", Rating: 4, Comment: "Lovely garden, a bit far from transit."},
			{Email: "mover@example.com", Rating: 5, Comment: "Easy access for the truck, wide doors."},
		},
		LikedBy: []string{"hunter@example.com"},
	},
	{
		OwnerEmail:  "admin@example.com",
		Title:       "Beach apartment",
		Location:    "San Diego, CA",
		Description: "Ocean view, one bedroom, shared pool.",
		Price:       "$2,400/mo",
		Amenities:   []string{"pool", "wifi", "ocean view"},
		Colors:      []color.RGBA{{R: 30, G: 170, B: 210, A: 255}},
	},
}

func main() {
	cfg := config.Load()
	if err := obs.ConfigureLogging(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	log.Info("Starting seed...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	redisCache, err := cache.NewRedis(ctx, cfg.RedisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	store, err := storage.Open(ctx, cfg.StorageBackend, cfg.S3(), mongoDB.UploadsBucket)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.StorageBackend, err)
	}
	images := storage.NewImages(store, cfg.MaxUploadBytes)

	// Start from an empty database and cache
	clearCollections(ctx, mongoDB.Database)
	if err := redisCache.Client().FlushDB(ctx).Err(); err != nil {
		log.Fatalf("Failed to flush Redis: %v", err)
	}
	if err := repository.EnsureIndexes(ctx, mongoDB.Database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	userRepo := repository.NewUserRepository(mongoDB.Database)
	listingRepo := repository.NewListingRepository(mongoDB.Database)
	reviewRepo := repository.NewReviewRepository(mongoDB.Database)
	authorizer := authz.NewLocalAuthorizer()

	jobs := queue.NewMemoryQueue(cfg.ActivityQueueCapacity)
	processor := queue.NewProcessor(jobs, userRepo, cfg.ActivityWorkers)
	processor.Start(ctx)

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:        userRepo,
		TokenStore:      cache.NewRefreshTokenStore(redisCache),
		JWTManager:      auth.NewJWTManager(cfg.AccessTokenSecret, cfg.AccessTokenExpiry),
		TokenGenerator:  auth.NewRefreshTokenGenerator(),
		Hasher:          auth.NewBcryptHasher(bcrypt.DefaultCost),
		Authorizer:      authorizer,
		RefreshTokenTTL: cfg.RefreshTokenExpiry,
		PublicBaseURL:   cfg.PublicBaseURL,
	})
	listingService := service.NewListingService(service.ListingServiceConfig{
		ListingRepo:   listingRepo,
		ReviewRepo:    reviewRepo,
		UserRepo:      userRepo,
		CounterRepo:   repository.NewCounterRepository(mongoDB.Database),
		Cache:         redisCache,
		Images:        images,
		Authorizer:    authorizer,
		Jobs:          jobs,
		Publisher:     events.NopPublisher{},
		PublicBaseURL: cfg.PublicBaseURL,
	})
	reviewService := service.NewReviewService(service.ReviewServiceConfig{
		ReviewRepo:  reviewRepo,
		ListingRepo: listingRepo,
		UserRepo:    userRepo,
		Cache:       redisCache,
		Jobs:        jobs,
		Publisher:   events.NopPublisher{},
	})
	wishlistService := service.NewWishlistService(service.WishlistServiceConfig{
		UserRepo:      userRepo,
		ListingRepo:   listingRepo,
		Cache:         redisCache,
		Jobs:          jobs,
		Publisher:     events.NopPublisher{},
		PublicBaseURL: cfg.PublicBaseURL,
	})

	actors := make(map[string]models.Actor, len(seedUsers))
	for _, u := range seedUsers {
		actors[u.Email] = registerUser(ctx, authService, userRepo, u)
	}
	log.WithField("count", len(actors)).Info("Seeded users")

	for _, sl := range seedListings {
		listing, err := listingService.Create(ctx, actors[sl.OwnerEmail], listingInput(sl), placeholderImages(sl))
		if err != nil {
			log.Fatalf("Failed to seed listing %q: %v", sl.Title, err)
		}

		for _, r := range sl.Reviews {
			req := &models.CreateReviewRequest{Rating: r.Rating, Comment: r.Comment}
			if _, err := reviewService.Create(ctx, actors[r.Email], listing.LID, req); err != nil {
				log.Fatalf("Failed to seed review on %d: %v", listing.LID, err)
			}
		}
		for _, email := range sl.LikedBy {
			if _, err := wishlistService.Toggle(ctx, actors[email].UID, listing.LID); err != nil {
				log.Fatalf("Failed to seed wishlist entry on %d: %v", listing.LID, err)
			}
		}

		log.WithFields(log.Fields{
			"l_id":    listing.LID,
			"title":   listing.Title,
			"reviews": len(sl.Reviews),
			"likes":   len(sl.LikedBy),
		}).Info("Seeded listing")
	}

	// Flush queued activity and notifications before exiting
	processor.Stop()

	log.WithField("password", seedPassword).Info("Seed completed successfully!")
}

func clearCollections(ctx context.Context, db *mongo.Database) {
	for _, name := range []string{
		database.UsersCollection,
		database.ListingsCollection,
		database.ReviewsCollection,
		database.CountersCollection,
	} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s: %v", name, err)
		}
	}
}

// registerUser signs up u. Admin cannot be self-assigned, so admins are
// registered as hunters and promoted directly in the database.
func registerUser(ctx context.Context, authService *service.AuthService, users repository.UserRepository, u SeedUser) models.Actor {
	role := u.Role
	if role == models.RoleAdmin {
		role = models.RoleHunter
	}

	resp, err := authService.Register(ctx, &models.RegisterRequest{
		Email:    u.Email,
		Password: seedPassword,
		Name:     u.Name,
		Role:     role,
	})
	if err != nil {
		log.Fatalf("Failed to register %s: %v", u.Email, err)
	}

	if u.Role != role {
		if _, err := users.UpdateRole(ctx, resp.User.UID, u.Role); err != nil {
			log.Fatalf("Failed to promote %s: %v", u.Email, err)
		}
	}

	return models.Actor{UID: resp.User.UID, Email: resp.User.Email, Role: u.Role}
}

func listingInput(sl SeedListing) *models.ListingInput {
	return &models.ListingInput{
		Title:       &sl.Title,
		Location:    &sl.Location,
		Description: &sl.Description,
		Price:       &sl.Price,
		Amenities:   sl.Amenities,
	}
}

// placeholderImages renders one solid PNG per color.
func placeholderImages(sl SeedListing) []storage.Upload {
	uploads := make([]storage.Upload, 0, len(sl.Colors))
	for i, c := range sl.Colors {
		body := solidPNG(c)
		uploads = append(uploads, storage.Upload{
			Filename: fmt.Sprintf("seed-%d.png", i),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			},
		})
	}
	return uploads
}

func solidPNG(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode placeholder image: %v", err)
	}
	return buf.Bytes()
}
