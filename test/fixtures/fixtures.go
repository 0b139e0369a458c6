// Package fixtures provides test data builders for unit and integration tests.
package fixtures

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"micasa/internal/models"

	"github.com/google/uuid"
)

// ===== User Fixtures =====

// UserBuilder provides fluent API for building test users.
type UserBuilder struct {
	user models.User
}

// NewUser creates a new UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	uid := uuid.NewString()
	return &UserBuilder{
		user: models.User{
			UID:         uid,
			Name:        "Test User",
			Email:       fmt.Sprintf("test-%s@example.com", uid[:8]),
			Password:    "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", // "password123" hashed
			Role:        models.RoleHunter,
			Wishlist:    []int64{},
			Preferences: models.DefaultPreferences(),
		},
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithRole(role models.Role) *UserBuilder {
	b.user.Role = role
	return b
}

// WithWishlist sets the stored wishlist. Pass nil to mimic a legacy document.
func (b *UserBuilder) WithWishlist(lids ...int64) *UserBuilder {
	b.user.Wishlist = lids
	return b
}

func (b *UserBuilder) Build() models.User {
	return b.user
}

func (b *UserBuilder) BuildPtr() *models.User {
	return &b.user
}

// ===== Listing Fixtures =====

// ListingBuilder provides fluent API for building test listings.
type ListingBuilder struct {
	listing models.Listing
}

// NewListing creates a new ListingBuilder with sensible defaults.
func NewListing() *ListingBuilder {
	return &ListingBuilder{
		listing: models.Listing{
			OwnerUID:    uuid.NewString(),
			Title:       "Test Listing",
			Location:    "Austin, TX",
			Description: "Two bedrooms near the park",
			Price:       "$1,200/mo",
			Amenities:   []string{"wifi", "parking"},
			ImageURLs:   []string{},
		},
	}
}

func (b *ListingBuilder) WithLID(lid int64) *ListingBuilder {
	b.listing.LID = lid
	return b
}

func (b *ListingBuilder) WithOwner(uid string) *ListingBuilder {
	b.listing.OwnerUID = uid
	return b
}

func (b *ListingBuilder) WithTitle(title string) *ListingBuilder {
	b.listing.Title = title
	return b
}

func (b *ListingBuilder) WithLocation(location string) *ListingBuilder {
	b.listing.Location = location
	return b
}

func (b *ListingBuilder) WithPrice(price string) *ListingBuilder {
	b.listing.Price = price
	return b
}

func (b *ListingBuilder) WithAmenities(amenities ...string) *ListingBuilder {
	b.listing.Amenities = amenities
	return b
}

// WithRatingStats stores an aggregate, which may disagree with the reviews
// collection to simulate legacy drift.
func (b *ListingBuilder) WithRatingStats(sum, count int, rating float64) *ListingBuilder {
	b.listing.RatingSum = sum
	b.listing.ReviewCount = count
	b.listing.Rating = rating
	return b
}

// WithoutLikes leaves likes unset, as on documents written before likes were tracked.
func (b *ListingBuilder) WithoutLikes() *ListingBuilder {
	b.listing.Likes = nil
	return b
}

func (b *ListingBuilder) WithLikes(likes int) *ListingBuilder {
	b.listing.Likes = &likes
	return b
}

func (b *ListingBuilder) Build() models.Listing {
	return b.listing
}

func (b *ListingBuilder) BuildPtr() *models.Listing {
	return &b.listing
}

// ===== Review Fixtures =====

// ReviewBuilder provides fluent API for building test reviews.
type ReviewBuilder struct {
	review models.Review
}

// NewReview creates a new ReviewBuilder with sensible defaults.
func NewReview(lid int64) *ReviewBuilder {
	return &ReviewBuilder{
		review: models.Review{
			LID:       lid,
			UserUID:   uuid.NewString(),
			UserEmail: "reviewer@example.com",
			Rating:    5,
			Comment:   "Lovely place",
			CreatedAt: time.Now(),
		},
	}
}

func (b *ReviewBuilder) WithRating(rating int) *ReviewBuilder {
	b.review.Rating = rating
	return b
}

func (b *ReviewBuilder) WithAuthor(uid, email string) *ReviewBuilder {
	b.review.UserUID = uid
	b.review.UserEmail = email
	return b
}

func (b *ReviewBuilder) Build() models.Review {
	return b.review
}

func (b *ReviewBuilder) BuildPtr() *models.Review {
	return &b.review
}

// ===== Image Fixtures =====

// PNG encodes a small solid-color image.
func PNG(c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// RedPNG is a ready-made upload body.
func RedPNG() []byte {
	return PNG(color.RGBA{R: 200, A: 255})
}

// PlainText is an upload body that is not an image.
func PlainText() []byte {
	return []byte("this is not an image, just some text\n")
}
