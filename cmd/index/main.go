package main

import (
	"context"
	"flag"
	"os"
	"time"

	"micasa/internal/config"
	"micasa/internal/database"
	"micasa/internal/repository"
	"micasa/pkg/obs"

	log "github.com/sirupsen/logrus"
)

func main() {
	backfill := flag.Bool("backfill-ratings", false, "recompute every listing's rating from its reviews")
	flag.Parse()

	cfg := config.Load()
	if err := obs.ConfigureLogging(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		log.Fatalf("Invalid logging configuration: %v", err)
	}
	log.Info("Starting migration...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Close()

	if err := repository.EnsureIndexes(ctx, mongoDB.Database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Info("Indexes are in place")

	listingRepo := repository.NewListingRepository(mongoDB.Database)
	counterRepo := repository.NewCounterRepository(mongoDB.Database)

	maxLID, err := listingRepo.MaxLID(ctx)
	if err != nil {
		log.Fatalf("Failed to read highest l_id: %v", err)
	}
	if err := counterRepo.Sync(ctx, repository.ListingCounter, maxLID); err != nil {
		log.Fatalf("Failed to sync listing counter: %v", err)
	}
	log.WithField("max_l_id", maxLID).Info("Listing counter synced")

	if *backfill {
		backfillRatings(ctx, listingRepo, repository.NewReviewRepository(mongoDB.Database))
	}

	log.Info("Migration completed successfully!")
}

// backfillRatings rebuilds the stored aggregate of every listing from the
// reviews collection.
func backfillRatings(ctx context.Context, listings repository.ListingRepository, reviews repository.ReviewRepository) {
	all, err := listings.FindAll(ctx, "")
	if err != nil {
		log.Fatalf("Failed to load listings: %v", err)
	}

	updated := 0
	for _, l := range all {
		stats, err := reviews.Stats(ctx, l.LID)
		if err != nil {
			log.WithError(err).WithField("l_id", l.LID).Warn("Failed to aggregate reviews")
			continue
		}
		if stats.Sum == l.RatingSum && stats.Count == l.ReviewCount {
			continue
		}
		if _, err := listings.SetRatingStats(ctx, l.LID, stats); err != nil {
			log.WithError(err).WithField("l_id", l.LID).Warn("Failed to store rating")
			continue
		}
		updated++
	}
	log.WithFields(log.Fields{"listings": len(all), "updated": updated}).Info("Ratings backfilled")
}
