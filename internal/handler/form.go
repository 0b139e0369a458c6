package handler

import (
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"
	"micasa/internal/storage"

	"github.com/gin-gonic/gin"
)

// Multipart field names.
const (
	fieldImages       = "images"
	fieldNewImages    = "newImages"
	fieldProfileImage = "profileImage"
)

// readForm returns the values and files of a multipart or urlencoded body.
func readForm(c *gin.Context) (url.Values, map[string][]*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		return form.Value, form.File, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	return c.Request.PostForm, nil, nil
}

func formString(values url.Values, key string) *string {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// splitAmenities accepts repeated fields, comma separated values, or both.
// A present but empty field yields an empty, non-nil list.
func splitAmenities(values url.Values) []string {
	vs, ok := values["amenities"]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func listingInput(values url.Values) *models.ListingInput {
	return &models.ListingInput{
		Title:       formString(values, "title"),
		Location:    formString(values, "location"),
		Description: formString(values, "description"),
		Price:       formString(values, "price"),
		Amenities:   splitAmenities(values),
	}
}

func uploads(files []*multipart.FileHeader) []storage.Upload {
	out := make([]storage.Upload, 0, len(files))
	for _, fh := range files {
		fh := fh
		out = append(out, storage.Upload{
			Filename: fh.Filename,
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return out
}

// listingID parses a positive l_id path parameter.
func listingID(c *gin.Context, param string) (int64, error) {
	lid, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || lid <= 0 {
		return 0, apperrors.ErrInvalidListingID
	}
	return lid, nil
}
