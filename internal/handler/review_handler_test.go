package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	"micasa/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewRouter(m *mocks.MockReviewService) *gin.Engine {
	handler := NewReviewHandler(m)
	router := gin.New()
	router.GET("/reviews/:l_id", handler.ListReviews)
	router.POST("/reviews/:l_id", asActor(hunter), handler.CreateReview)
	return router
}

func TestReviewHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		err            error
		expectedStatus int
	}{
		{name: "review stored", path: "/reviews/3", body: `{"rating":4,"comment":"Nice"}`, expectedStatus: http.StatusCreated},
		{name: "invalid listing id", path: "/reviews/x", body: `{"rating":4,"comment":"Nice"}`, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", path: "/reviews/3", body: `{"rating":"four"}`, expectedStatus: http.StatusBadRequest},
		{name: "rating out of range", path: "/reviews/3", body: `{"rating":6,"comment":"Nice"}`, err: apperrors.ErrInvalidRating, expectedStatus: http.StatusBadRequest},
		{name: "blank comment", path: "/reviews/3", body: `{"rating":4,"comment":" "}`, err: apperrors.ErrCommentMissing, expectedStatus: http.StatusBadRequest},
		{name: "listing gone", path: "/reviews/3", body: `{"rating":4,"comment":"Nice"}`, err: apperrors.ErrListingNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mocks.MockReviewService{
				CreateFunc: func(ctx context.Context, actor models.Actor, lid int64, req *models.CreateReviewRequest) (*models.ReviewResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &models.ReviewResponse{
						Review:        models.Review{LID: lid, UserUID: actor.UID, UserEmail: actor.Email, Rating: req.Rating, Comment: req.Comment},
						AverageRating: 4,
						ReviewCount:   1,
					}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(reviewRouter(m), req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				data := dataOf(t, w)
				assert.Equal(t, float64(4), data["averageRating"])
				review := data["review"].(map[string]interface{})
				assert.Equal(t, hunter.Email, review["userEmail"])
				assert.Equal(t, float64(3), review["l_id"])
			}
		})
	}
}

func TestReviewHandler_List(t *testing.T) {
	m := &mocks.MockReviewService{
		ListFunc: func(ctx context.Context, lid int64) ([]models.Review, error) {
			if lid == 404 {
				return nil, apperrors.ErrListingNotFound
			}
			return []models.Review{{LID: lid, Rating: 5}, {LID: lid, Rating: 3}}, nil
		},
	}
	router := reviewRouter(m)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/reviews/3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data, 2)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/reviews/404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
