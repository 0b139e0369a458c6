package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "micasa/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		sentinel error
	}{
		{apperrors.ErrListingNotFound, http.StatusNotFound, apperrors.ErrListingNotFound},
		{fmt.Errorf("save image 2: %w", apperrors.ErrFileTooLarge), http.StatusRequestEntityTooLarge, apperrors.ErrFileTooLarge},
		{apperrors.ErrRefreshTokenReused, http.StatusUnauthorized, apperrors.ErrRefreshTokenReused},
		{apperrors.ErrNotListingOwner, http.StatusForbidden, apperrors.ErrNotListingOwner},
		{apperrors.ErrWishlistConflict, http.StatusConflict, apperrors.ErrWishlistConflict},
		{errors.New("boom"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, sentinel := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.sentinel, sentinel)
		})
	}
}

func TestRespondError_HidesWrappedDetail(t *testing.T) {
	router := gin.New()
	router.GET("/wrapped", func(c *gin.Context) {
		respondError(c, fmt.Errorf("users.wishlist for u-1: %w", apperrors.ErrUserNotFound))
	})
	router.GET("/unknown", func(c *gin.Context) {
		respondError(c, errors.New("mongo: connection pool cleared"))
	})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrUserNotFound.Error(), decode(t, w).Error)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Error)
	assert.NotContains(t, w.Body.String(), "mongo")
}
