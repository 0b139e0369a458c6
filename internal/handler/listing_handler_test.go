package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	"micasa/internal/service/mocks"
	"micasa/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingRouter(m *mocks.MockListingService, actor models.Actor) *gin.Engine {
	handler := NewListingHandler(m)
	router := gin.New()
	router.GET("/listings", handler.ListListings)
	router.GET("/listings/:id", handler.GetListing)
	authed := router.Group("/listings", asActor(actor))
	authed.POST("", handler.CreateListing)
	authed.PUT("/:id", handler.UpdateListing)
	authed.DELETE("/:id", handler.DeleteListing)
	authed.POST("/:id/rating/recompute", handler.RecomputeRating)
	return router
}

func TestListingHandler_Create(t *testing.T) {
	var gotActor models.Actor
	var gotInput *models.ListingInput
	var gotImages []storage.Upload
	m := &mocks.MockListingService{
		CreateFunc: func(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
			gotActor, gotInput, gotImages = actor, input, images
			return &models.Listing{LID: 7, OwnerUID: actor.UID, Title: *input.Title}, nil
		},
	}

	body, contentType := multipartBody(t,
		[][2]string{{"title", "Sunny loft"}, {"price", "$1,200/mo"}, {"amenities", "wifi, parking"}, {"amenities", "pool"}},
		formFile{field: "images", name: "a.png", content: []byte("a")},
		formFile{field: "images", name: "b.png", content: []byte("b")},
	)
	req := httptest.NewRequest(http.MethodPost, "/listings", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(listingRouter(m, owner), req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, owner, gotActor)
	assert.Equal(t, "Sunny loft", *gotInput.Title)
	assert.Equal(t, "$1,200/mo", *gotInput.Price)
	assert.Nil(t, gotInput.Location)
	assert.Equal(t, []string{"wifi", "parking", "pool"}, gotInput.Amenities)
	require.Len(t, gotImages, 2)
	assert.Equal(t, "a.png", gotImages[0].Filename)
	assert.Equal(t, float64(7), dataOf(t, w)["l_id"])
}

func TestListingHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "hunter cannot create", err: apperrors.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "title missing", err: apperrors.ErrListingTitleMissing, expectedStatus: http.StatusBadRequest},
		{name: "image too large", err: apperrors.ErrFileTooLarge, expectedStatus: http.StatusRequestEntityTooLarge},
		{name: "unsupported image", err: apperrors.ErrUnsupportedFileType, expectedStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mocks.MockListingService{
				CreateFunc: func(ctx context.Context, actor models.Actor, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
					return nil, tt.err
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(url.Values{"title": {"x"}}.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := serve(listingRouter(m, hunter), req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.err.Error(), decode(t, w).Error)
		})
	}
}

func TestListingHandler_List(t *testing.T) {
	var got models.ListingQuery
	m := &mocks.MockListingService{
		ListFunc: func(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error) {
			got = query
			return &models.ListingListResponse{
				Items:      []models.Listing{{LID: 2}, {LID: 1}},
				Pagination: models.NewPagination(1, 20, 2),
			}, nil
		},
	}

	w := serve(listingRouter(m, hunter), httptest.NewRequest(http.MethodGet, "/listings?location=austin&minPrice=500&maxPrice=2000&amenity=wifi&page=1&limit=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ListingQuery{Location: "austin", MinPrice: "500", MaxPrice: "2000", Amenity: "wifi", Page: 1, Limit: 20}, got)
	data := dataOf(t, w)
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(2), data["pagination"].(map[string]interface{})["totalItems"])
}

func TestListingHandler_List_Errors(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
	}{
		{name: "limit above maximum", query: "?limit=500", expectedStatus: http.StatusBadRequest},
		{name: "page zero", query: "?page=0&limit=10", expectedStatus: http.StatusOK},
		{name: "non numeric page", query: "?page=abc", expectedStatus: http.StatusBadRequest},
		{name: "inverted price range", query: "?minPrice=900&maxPrice=100", err: apperrors.ErrInvalidPriceRange, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mocks.MockListingService{
				ListFunc: func(ctx context.Context, query models.ListingQuery) (*models.ListingListResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &models.ListingListResponse{Items: []models.Listing{}}, nil
				},
			}

			w := serve(listingRouter(m, hunter), httptest.NewRequest(http.MethodGet, "/listings"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestListingHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "found", path: "/listings/3", expectedStatus: http.StatusOK},
		{name: "not found", path: "/listings/404", expectedStatus: http.StatusNotFound},
		{name: "non numeric id", path: "/listings/abc", expectedStatus: http.StatusBadRequest},
		{name: "zero id", path: "/listings/0", expectedStatus: http.StatusBadRequest},
		{name: "negative id", path: "/listings/-1", expectedStatus: http.StatusBadRequest},
	}

	m := &mocks.MockListingService{
		GetFunc: func(ctx context.Context, lid int64) (*models.Listing, error) {
			if lid == 404 {
				return nil, apperrors.ErrListingNotFound
			}
			return &models.Listing{LID: lid}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(listingRouter(m, hunter), httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestListingHandler_Update(t *testing.T) {
	var gotLID int64
	var gotInput *models.ListingInput
	var gotImages []storage.Upload
	m := &mocks.MockListingService{
		UpdateFunc: func(ctx context.Context, actor models.Actor, lid int64, input *models.ListingInput, images []storage.Upload) (*models.Listing, error) {
			gotLID, gotInput, gotImages = lid, input, images
			if actor.UID != owner.UID {
				return nil, apperrors.ErrNotListingOwner
			}
			return &models.Listing{LID: lid}, nil
		},
	}

	body, contentType := multipartBody(t, [][2]string{{"description", "Now with a garden"}, {"amenities", ""}},
		formFile{field: "newImages", name: "c.jpg", content: []byte("c")},
		formFile{field: "images", name: "ignored.jpg", content: []byte("x")},
	)
	req := httptest.NewRequest(http.MethodPut, "/listings/5", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(listingRouter(m, owner), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), gotLID)
	assert.Nil(t, gotInput.Title)
	assert.Equal(t, "Now with a garden", *gotInput.Description)
	assert.NotNil(t, gotInput.Amenities)
	assert.Empty(t, gotInput.Amenities)
	require.Len(t, gotImages, 1)
	assert.Equal(t, "c.jpg", gotImages[0].Filename)

	req = httptest.NewRequest(http.MethodPut, "/listings/5", strings.NewReader("title=Mine"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = serve(listingRouter(m, models.Actor{UID: "someone-else", Role: models.RoleOwner}), req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListingHandler_Delete(t *testing.T) {
	m := &mocks.MockListingService{
		DeleteFunc: func(ctx context.Context, actor models.Actor, lid int64) (*models.DeleteListingResult, error) {
			if lid == 9 {
				return nil, apperrors.ErrListingNotFound
			}
			return &models.DeleteListingResult{ListingID: lid, ReviewsDeleted: 4, WishlistsPulled: 2}, nil
		},
	}
	router := listingRouter(m, owner)

	w := serve(router, httptest.NewRequest(http.MethodDelete, "/listings/3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(4), data["reviewsDeleted"])
	assert.Equal(t, float64(2), data["wishlistsPulled"])
	assert.NotContains(t, data, "warnings")

	w = serve(router, httptest.NewRequest(http.MethodDelete, "/listings/9", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingHandler_RecomputeRating(t *testing.T) {
	m := &mocks.MockListingService{
		RecomputeRatingFunc: func(ctx context.Context, lid int64) (*models.Listing, error) {
			return &models.Listing{LID: lid, Rating: 4.5, ReviewCount: 2}, nil
		},
	}

	w := serve(listingRouter(m, admin), httptest.NewRequest(http.MethodPost, "/listings/3/rating/recompute", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4.5, dataOf(t, w)["rating"])
}
