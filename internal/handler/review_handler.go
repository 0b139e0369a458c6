package handler

import (
	"micasa/internal/middleware"
	"micasa/internal/models"
	"micasa/internal/service"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	service service.ReviewServicer
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service service.ReviewServicer) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// CreateReview godoc
// @Summary      Review a listing
// @Description  Post a 1-5 rating with a comment. The response carries the listing's new average.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        l_id     path      int                         true  "Listing l_id"
// @Param        request  body      models.CreateReviewRequest  true  "Rating and comment"
// @Success      201      {object}  response.Response{data=models.ReviewResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Security     BearerAuth
// @Router       /reviews/{l_id} [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	lid, err := listingID(c, "l_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), lid, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// ListReviews godoc
// @Summary      List reviews of a listing
// @Tags         reviews
// @Produce      json
// @Param        l_id  path      int  true  "Listing l_id"
// @Success      200   {object}  response.Response{data=[]models.Review}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /reviews/{l_id} [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	lid, err := listingID(c, "l_id")
	if err != nil {
		respondError(c, err)
		return
	}

	reviews, err := h.service.List(c.Request.Context(), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, reviews)
}
