// Package errors provides custom error types for the application.
package errors

import "errors"

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role, must be hunter, owner, mover or admin")
	ErrRoleNotAssignable  = errors.New("admin role can only be granted by an admin")
)

// Auth errors
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenReused   = errors.New("refresh token reuse detected, please log in again")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Listing errors
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrInvalidListingID    = errors.New("invalid listing id")
	ErrNotListingOwner     = errors.New("you can only modify your own listings")
	ErrListingTitleMissing = errors.New("title is required")
	ErrInvalidPriceRange   = errors.New("minPrice and maxPrice must be numbers with minPrice <= maxPrice")
)

// Review errors
var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrCommentMissing = errors.New("comment is required")
	ErrEmailMissing   = errors.New("email is required")
)

// Upload errors
var (
	ErrFileTooLarge        = errors.New("file exceeds the 5MB upload limit")
	ErrUnsupportedFileType = errors.New("only jpeg, png, gif and webp images are allowed")
	ErrObjectNotFound      = errors.New("file not found")
)

// Wishlist errors
var (
	ErrWishlistConflict = errors.New("wishlist was modified concurrently, please retry")
)

// Infrastructure errors
var (
	ErrRateLimited = errors.New("too many requests, please slow down")
)
