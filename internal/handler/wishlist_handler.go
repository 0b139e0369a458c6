package handler

import (
	"micasa/internal/middleware"
	"micasa/internal/service"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
)

// WishlistHandler handles HTTP requests for the caller's wishlist.
type WishlistHandler struct {
	service service.WishlistServicer
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service service.WishlistServicer) *WishlistHandler {
	return &WishlistHandler{service: service}
}

// Toggle godoc
// @Summary      Toggle a listing in the wishlist
// @Description  Adds the listing if absent, removes it otherwise, and moves its like counter by one
// @Tags         wishlist
// @Produce      json
// @Param        listingId  path      int  true  "Listing l_id"
// @Success      200        {object}  response.Response{data=models.WishlistStatus}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Failure      500        {object}  response.Response
// @Security     BearerAuth
// @Router       /wishlist/{listingId} [post]
func (h *WishlistHandler) Toggle(c *gin.Context) {
	lid, err := listingID(c, "listingId")
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := h.service.Toggle(c.Request.Context(), middleware.GetUserID(c), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, status)
}

// Status godoc
// @Summary      Wishlist status of a listing
// @Tags         wishlist
// @Produce      json
// @Param        listingId  path      int  true  "Listing l_id"
// @Success      200        {object}  response.Response{data=models.WishlistStatus}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Failure      500        {object}  response.Response
// @Security     BearerAuth
// @Router       /wishlist/{listingId} [get]
func (h *WishlistHandler) Status(c *gin.Context) {
	lid, err := listingID(c, "listingId")
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := h.service.Status(c.Request.Context(), middleware.GetUserID(c), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, status)
}

// List godoc
// @Summary      List wishlisted listings
// @Tags         wishlist
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.Listing}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /wishlist [get]
func (h *WishlistHandler) List(c *gin.Context) {
	listings, err := h.service.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, listings)
}
