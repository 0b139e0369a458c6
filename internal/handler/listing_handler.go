package handler

import (
	"micasa/internal/middleware"
	"micasa/internal/models"
	"micasa/internal/service"
	"micasa/pkg/response"

	"github.com/gin-gonic/gin"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service service.ListingServicer
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service service.ListingServicer) *ListingHandler {
	return &ListingHandler{service: service}
}

// CreateListing godoc
// @Summary      Create a listing
// @Description  Create a listing from a multipart form. Owner or admin only. Amenities may be repeated or comma separated.
// @Tags         listings
// @Accept       mpfd
// @Produce      json
// @Param        title        formData  string  true   "Title"
// @Param        location     formData  string  false  "Location"
// @Param        description  formData  string  false  "Description"
// @Param        price        formData  string  false  "Display price, e.g. $1,200/mo"
// @Param        amenities    formData  string  false  "Amenities"
// @Param        images       formData  file    false  "Images (jpeg, png, gif, webp; max 5MB each)"
// @Success      201          {object}  response.Response{data=models.Listing}
// @Failure      400          {object}  response.Response
// @Failure      403          {object}  response.Response
// @Failure      413          {object}  response.Response
// @Failure      415          {object}  response.Response
// @Failure      500          {object}  response.Response
// @Security     BearerAuth
// @Router       /listings [post]
func (h *ListingHandler) CreateListing(c *gin.Context) {
	values, files, err := readForm(c)
	if err != nil {
		response.BadRequest(c, "invalid form data")
		return
	}

	listing, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), listingInput(values), uploads(files[fieldImages]))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, listing)
}

// ListListings godoc
// @Summary      List listings
// @Description  Listings newest first, optionally filtered by location, price range and amenity
// @Tags         listings
// @Produce      json
// @Param        location  query     string  false  "Location contains (case-insensitive)"
// @Param        minPrice  query     string  false  "Minimum price"
// @Param        maxPrice  query     string  false  "Maximum price"
// @Param        amenity   query     string  false  "Amenity contains (case-insensitive)"
// @Param        page      query     int     false  "Page number (default: 1)"
// @Param        limit     query     int     false  "Items per page (default: 20, max: 100)"
// @Success      200       {object}  response.Response{data=models.ListingListResponse}
// @Failure      400       {object}  response.Response
// @Failure      500       {object}  response.Response
// @Router       /listings [get]
func (h *ListingHandler) ListListings(c *gin.Context) {
	var query models.ListingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// GetListing godoc
// @Summary      Get a listing
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing l_id"
// @Success      200  {object}  response.Response{data=models.Listing}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /listings/{id} [get]
func (h *ListingHandler) GetListing(c *gin.Context) {
	lid, err := listingID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.service.Get(c.Request.Context(), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, listing)
}

// UpdateListing godoc
// @Summary      Update a listing
// @Description  Fields present overwrite the stored value. Files under newImages are appended. Listing owner or admin only.
// @Tags         listings
// @Accept       mpfd
// @Produce      json
// @Param        id           path      int     true   "Listing l_id"
// @Param        title        formData  string  false  "Title"
// @Param        location     formData  string  false  "Location"
// @Param        description  formData  string  false  "Description"
// @Param        price        formData  string  false  "Display price"
// @Param        amenities    formData  string  false  "Amenities"
// @Param        newImages    formData  file    false  "Images to append"
// @Success      200          {object}  response.Response{data=models.Listing}
// @Failure      400          {object}  response.Response
// @Failure      403          {object}  response.Response
// @Failure      404          {object}  response.Response
// @Failure      413          {object}  response.Response
// @Failure      415          {object}  response.Response
// @Failure      500          {object}  response.Response
// @Security     BearerAuth
// @Router       /listings/{id} [put]
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	lid, err := listingID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	values, files, err := readForm(c)
	if err != nil {
		response.BadRequest(c, "invalid form data")
		return
	}

	listing, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), lid, listingInput(values), uploads(files[fieldNewImages]))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, listing)
}

// DeleteListing godoc
// @Summary      Delete a listing
// @Description  Delete a listing with its reviews, wishlist entries and images. Listing owner or admin only.
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing l_id"
// @Success      200  {object}  response.Response{data=models.DeleteListingResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /listings/{id} [delete]
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	lid, err := listingID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), middleware.GetActor(c), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// RecomputeRating godoc
// @Summary      Recompute a listing's rating
// @Description  Rebuild the rating aggregate from stored reviews. Admin only.
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing l_id"
// @Success      200  {object}  response.Response{data=models.Listing}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /listings/{id}/rating/recompute [post]
func (h *ListingHandler) RecomputeRating(c *gin.Context) {
	lid, err := listingID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.service.RecomputeRating(c.Request.Context(), lid)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, listing)
}
