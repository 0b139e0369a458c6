package handler

import (
	"context"
	"net/http"
	"strings"

	"micasa/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ImageSource opens stored images by key.
type ImageSource interface {
	Open(ctx context.Context, key string) (*storage.Object, error)
}

// UploadHandler serves stored images.
type UploadHandler struct {
	images ImageSource
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(images ImageSource) *UploadHandler {
	return &UploadHandler{images: images}
}

// Serve godoc
// @Summary      Fetch an uploaded image
// @Tags         uploads
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Param        filename  path  string  true  "Object key"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /uploads/{filename} [get]
func (h *UploadHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filename"), "/")

	obj, err := h.images.Open(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	defer func() {
		if err := obj.Body.Close(); err != nil {
			log.WithError(err).WithField("key", key).Debug("failed to close image body")
		}
	}()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
