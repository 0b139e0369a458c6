//go:build api

package testserver

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"micasa/internal/models"
	"micasa/internal/repository"
	"micasa/test/fixtures"
	"micasa/test/testutil"

	"github.com/stretchr/testify/require"
)

const (
	waitTimeout = 5 * time.Second
	waitTick    = 25 * time.Millisecond

	// DefaultPassword is used by every account the helpers register.
	DefaultPassword = "password123"
)

// Session is a registered user together with a valid access token.
type Session struct {
	UID          string
	Email        string
	Role         models.Role
	AccessToken  string
	RefreshToken string
}

// AuthHelper provides authentication helpers for API tests.
type AuthHelper struct {
	server *TestServer
}

// NewAuthHelper creates a new auth helper.
func NewAuthHelper(server *TestServer) *AuthHelper {
	return &AuthHelper{server: server}
}

// RegisterUser registers a new account through the API.
func (ah *AuthHelper) RegisterUser(t *testing.T, name, email string, role models.Role) models.AuthResponse {
	t.Helper()

	req := models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: DefaultPassword,
		Role:     role,
	}

	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/users/register", req)
	require.Equal(t, http.StatusCreated, w.Code, "register should return 201, got: %s", w.Body.String())

	return testutil.ParseData[models.AuthResponse](t, w)
}

// Login logs in a user and returns the auth response containing tokens.
func (ah *AuthHelper) Login(t *testing.T, email, password string) models.AuthResponse {
	t.Helper()

	req := models.LoginRequest{
		Email:    email,
		Password: password,
	}

	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/auth/login", req)
	require.Equal(t, http.StatusOK, w.Code, "login should return 200, got: %s", w.Body.String())

	return testutil.ParseData[models.AuthResponse](t, w)
}

// CreateAuthenticatedUser registers an account with the given role and returns a session.
// Admin accounts are registered as hunters, promoted in the database and logged in again.
func (ah *AuthHelper) CreateAuthenticatedUser(t *testing.T, name, email string, role models.Role) Session {
	t.Helper()

	if role == models.RoleAdmin {
		auth := ah.RegisterUser(t, name, email, models.RoleHunter)
		ah.Promote(t, auth.User.UID, models.RoleAdmin)
		auth = ah.Login(t, email, DefaultPassword)
		return sessionOf(auth)
	}

	return sessionOf(ah.RegisterUser(t, name, email, role))
}

// Hunter, Owner, Mover and Admin register a user of that role with a unique email.
func (ah *AuthHelper) Hunter(t *testing.T) Session {
	t.Helper()
	return ah.CreateAuthenticatedUser(t, "Hana Hunter", uniqueEmail("hunter"), models.RoleHunter)
}

func (ah *AuthHelper) Owner(t *testing.T) Session {
	t.Helper()
	return ah.CreateAuthenticatedUser(t, "Omar Owner", uniqueEmail("owner"), models.RoleOwner)
}

func (ah *AuthHelper) Mover(t *testing.T) Session {
	t.Helper()
	return ah.CreateAuthenticatedUser(t, "Mila Mover", uniqueEmail("mover"), models.RoleMover)
}

func (ah *AuthHelper) Admin(t *testing.T) Session {
	t.Helper()
	return ah.CreateAuthenticatedUser(t, "Ada Admin", uniqueEmail("admin"), models.RoleAdmin)
}

// Promote sets a role directly in the database.
func (ah *AuthHelper) Promote(t *testing.T, uid string, role models.Role) {
	t.Helper()
	_, err := ah.server.UserRepo.UpdateRole(context.Background(), uid, role)
	require.NoError(t, err, "failed to promote user")
}

// SeedUser directly inserts a user into the database (bypasses API).
func (ah *AuthHelper) SeedUser(t *testing.T, user *models.User) *models.User {
	t.Helper()

	err := ah.server.UserRepo.Create(context.Background(), user)
	require.NoError(t, err, "failed to seed user")

	return user
}

func sessionOf(auth models.AuthResponse) Session {
	return Session{
		UID:          auth.User.UID,
		Email:        auth.User.Email,
		Role:         auth.User.Role,
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	}
}

var emailSeq int

func uniqueEmail(prefix string) string {
	emailSeq++
	return fmt.Sprintf("%s%d@example.com", prefix, emailSeq)
}

// ListingHelper provides listing helpers for API tests.
type ListingHelper struct {
	server *TestServer
}

// NewListingHelper creates a new listing helper.
func NewListingHelper(server *TestServer) *ListingHelper {
	return &ListingHelper{server: server}
}

// ListingForm is the text part of a create form.
type ListingForm struct {
	Title       string
	Location    string
	Description string
	Price       string
	Amenities   []string
}

func (f ListingForm) fields() [][2]string {
	fields := [][2]string{
		{"title", f.Title},
		{"location", f.Location},
		{"description", f.Description},
		{"price", f.Price},
	}
	for _, a := range f.Amenities {
		fields = append(fields, [2]string{"amenities", a})
	}
	return fields
}

// CreateListing posts a multipart create form, attaching each image under "images".
func (lh *ListingHelper) CreateListing(t *testing.T, token string, form ListingForm, images ...[]byte) models.Listing {
	t.Helper()

	files := make([]testutil.File, 0, len(images))
	for i, img := range images {
		files = append(files, testutil.File{Field: "images", Name: fmt.Sprintf("photo%d.png", i), Content: img})
	}

	w := testutil.MakeMultipartRequest(t, lh.server.Router, http.MethodPost, "/api/listings", token, form.fields(), files...)
	require.Equal(t, http.StatusCreated, w.Code, "create listing should return 201, got: %s", w.Body.String())

	return testutil.ParseData[models.Listing](t, w)
}

// CreateDefaultListing creates a listing with one image.
func (lh *ListingHelper) CreateDefaultListing(t *testing.T, token string) models.Listing {
	t.Helper()
	return lh.CreateListing(t, token, ListingForm{
		Title:       "Sunny loft",
		Location:    "Austin, TX",
		Description: "Two bedrooms near the park",
		Price:       "$1,200/mo",
		Amenities:   []string{"wifi", "parking"},
	}, fixtures.RedPNG())
}

// SeedListing inserts a listing directly, allocating its l_id from the counter.
func (lh *ListingHelper) SeedListing(t *testing.T, listing *models.Listing) *models.Listing {
	t.Helper()
	ctx := context.Background()

	lid, err := lh.server.CounterRepo.Next(ctx, repository.ListingCounter)
	require.NoError(t, err, "failed to allocate listing id")
	listing.LID = lid

	err = lh.server.ListingRepo.Create(ctx, listing)
	require.NoError(t, err, "failed to seed listing")

	return listing
}

// Review posts a review and returns the aggregate reported by the API.
func (lh *ListingHelper) Review(t *testing.T, token string, lid int64, rating int, comment string) models.ReviewResponse {
	t.Helper()

	path := fmt.Sprintf("/api/reviews/%d", lid)
	req := models.CreateReviewRequest{Rating: rating, Comment: comment}

	w := testutil.MakeAuthRequest(t, lh.server.Router, http.MethodPost, path, token, req)
	require.Equal(t, http.StatusCreated, w.Code, "create review should return 201, got: %s", w.Body.String())

	return testutil.ParseData[models.ReviewResponse](t, w)
}

// Toggle flips the listing's membership in the caller's wishlist.
func (lh *ListingHelper) Toggle(t *testing.T, token string, lid int64) models.WishlistStatus {
	t.Helper()

	w := testutil.MakeAuthRequest(t, lh.server.Router, http.MethodPost, fmt.Sprintf("/api/wishlist/%d", lid), token, nil)
	require.Equal(t, http.StatusOK, w.Code, "toggle should return 200, got: %s", w.Body.String())

	return testutil.ParseData[models.WishlistStatus](t, w)
}
