package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing is a property advertised on the marketplace.
type Listing struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty" example:"507f1f77bcf86cd799439011"`
	LID         int64              `json:"l_id" bson:"l_id" example:"3"`
	OwnerUID    string             `json:"ownerUid" bson:"ownerUid" example:"0b6c1f3e-6d8e-4a43-a3b5-2b1f0c9d7e21"`
	Title       string             `json:"title" bson:"title" example:"Sunny loft near the park"`
	Location    string             `json:"location" bson:"location" example:"Austin, TX"`
	Description string             `json:"description" bson:"description" example:"Two bedrooms, one bath"`
	Price       string             `json:"price" bson:"price" example:"$1,200/mo"`
	Rating      float64            `json:"rating" bson:"rating" example:"4.5"`
	RatingSum   int                `json:"-" bson:"ratingSum"`
	ReviewCount int                `json:"reviewCount" bson:"reviewCount" example:"2"`
	Amenities   []string           `json:"amenities" bson:"amenities" example:"wifi,parking"`
	ImageURLs   []string           `json:"imageUrls" bson:"imageUrls" example:"3f1c9a.jpg"`
	Images      []string           `json:"images" bson:"-" example:"http://localhost:8080/uploads/3f1c9a.jpg"`
	// Likes is nil on documents written before likes were tracked.
	Likes     *int      `json:"likes" bson:"likes" example:"7"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt" example:"2024-01-15T09:30:00Z"`
}

// LikeCount returns the like counter, treating a missing value as zero.
func (l *Listing) LikeCount() int {
	if l.Likes == nil {
		return 0
	}
	return *l.Likes
}

// ListingInput carries the text fields of a create or update form.
// Nil fields are left untouched on update.
type ListingInput struct {
	Title       *string
	Location    *string
	Description *string
	Price       *string
	Amenities   []string
}

// ListingUpdate is the partial update applied by the repository.
type ListingUpdate struct {
	ListingInput
	AppendImages []string
}

// ListingQuery narrows GET /api/listings.
type ListingQuery struct {
	Location string `form:"location" example:"austin"`
	MinPrice string `form:"minPrice" example:"500"`
	MaxPrice string `form:"maxPrice" example:"2000"`
	Amenity  string `form:"amenity" example:"parking"`
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
}

// ListingListResponse is the response for listing listings.
type ListingListResponse struct {
	Items      []Listing  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// DeleteListingResult reports what a cascading delete removed.
type DeleteListingResult struct {
	ListingID       int64    `json:"listingId" example:"3"`
	ReviewsDeleted  int64    `json:"reviewsDeleted" example:"4"`
	WishlistsPulled int64    `json:"wishlistsPulled" example:"2"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Pagination contains pagination metadata.
type Pagination struct {
	Page       int `json:"page" example:"1"`
	Limit      int `json:"limit" example:"20"`
	TotalItems int `json:"totalItems" example:"42"`
	TotalPages int `json:"totalPages" example:"3"`
}

// NewPagination computes page metadata.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}
