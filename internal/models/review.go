package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's rating of a listing. LID is a soft reference.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty" example:"507f1f77bcf86cd799439055"`
	LID       int64              `json:"l_id" bson:"l_id" example:"3"`
	UserUID   string             `json:"userUid" bson:"userUid" example:"0b6c1f3e-6d8e-4a43-a3b5-2b1f0c9d7e21"`
	UserEmail string             `json:"userEmail" bson:"userEmail" example:"user@example.com"`
	UserImage string             `json:"userImage" bson:"userImage" example:"https://www.gravatar.com/avatar/b58996c504c5638798eb6b511e6f49af?d=identicon"`
	Rating    int                `json:"rating" bson:"rating" example:"5"`
	Comment   string             `json:"comment" bson:"comment" example:"Great place, friendly owner"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
}

// CreateReviewRequest is the payload for posting a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" example:"5"`
	Comment string `json:"comment" example:"Great place, friendly owner"`
}

// ReviewResponse is returned after a review is stored.
type ReviewResponse struct {
	Review        Review  `json:"review"`
	AverageRating float64 `json:"averageRating" example:"4"`
	ReviewCount   int     `json:"reviewCount" example:"2"`
}

// RatingStats is the aggregate of a listing's reviews.
type RatingStats struct {
	Sum   int
	Count int
}

// WishlistStatus is returned by the wishlist endpoints.
type WishlistStatus struct {
	ListingID  int64 `json:"listingId" example:"3"`
	InWishlist bool  `json:"inWishlist" example:"true"`
	Likes      int   `json:"likes" example:"8"`
}
