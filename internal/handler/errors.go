package handler

import (
	"errors"
	"net/http"

	apperrors "micasa/internal/errors"
	"micasa/internal/middleware"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorStatus struct {
	err    error
	status int
}

// errorStatuses maps sentinel errors to HTTP status codes. The first match wins.
var errorStatuses = []errorStatus{
	{apperrors.ErrUserNotFound, http.StatusNotFound},
	{apperrors.ErrListingNotFound, http.StatusNotFound},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound},
	{apperrors.ErrObjectNotFound, http.StatusNotFound},

	{apperrors.ErrInvalidListingID, http.StatusBadRequest},
	{apperrors.ErrListingTitleMissing, http.StatusBadRequest},
	{apperrors.ErrInvalidPriceRange, http.StatusBadRequest},
	{apperrors.ErrInvalidRating, http.StatusBadRequest},
	{apperrors.ErrCommentMissing, http.StatusBadRequest},
	{apperrors.ErrEmailMissing, http.StatusBadRequest},
	{apperrors.ErrInvalidRole, http.StatusBadRequest},

	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{apperrors.ErrInvalidToken, http.StatusUnauthorized},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{apperrors.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{apperrors.ErrRefreshTokenReused, http.StatusUnauthorized},

	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrNotListingOwner, http.StatusForbidden},
	{apperrors.ErrRoleNotAssignable, http.StatusForbidden},

	{apperrors.ErrUserAlreadyExists, http.StatusConflict},
	{apperrors.ErrWishlistConflict, http.StatusConflict},

	{apperrors.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{apperrors.ErrUnsupportedFileType, http.StatusUnsupportedMediaType},
	{apperrors.ErrRateLimited, http.StatusTooManyRequests},
}

// statusFor returns the status for err and the sentinel that matched it.
func statusFor(err error) (int, error) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status, es.err
		}
	}
	return http.StatusInternalServerError, nil
}

// respondError writes err as an error envelope. Unknown errors are logged and
// hidden behind the generic 500 message.
func respondError(c *gin.Context, err error) {
	status, sentinel := statusFor(err)
	if sentinel == nil {
		log.WithError(err).WithFields(log.Fields{
			"request_id": middleware.GetRequestID(c),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.InternalError(c)
		return
	}
	response.Error(c, status, sentinel.Error())
}
