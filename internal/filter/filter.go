// Package filter narrows and pages listing results.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var priceNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Criteria is a parsed listing search.
type Criteria struct {
	Location string
	MinPrice *float64
	MaxPrice *float64
	Amenity  string
}

// ParsePrice extracts the first number from a display price such as
// "$1,200/mo". Thousands separators are ignored.
func ParsePrice(price string) (float64, bool) {
	match := priceNumber.FindString(strings.ReplaceAll(price, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FromQuery validates the price bounds of q.
func FromQuery(q models.ListingQuery) (Criteria, error) {
	c := Criteria{
		Location: strings.TrimSpace(q.Location),
		Amenity:  strings.TrimSpace(q.Amenity),
	}

	var err error
	if c.MinPrice, err = bound(q.MinPrice); err != nil {
		return Criteria{}, err
	}
	if c.MaxPrice, err = bound(q.MaxPrice); err != nil {
		return Criteria{}, err
	}
	if c.MinPrice != nil && c.MaxPrice != nil && *c.MinPrice > *c.MaxPrice {
		return Criteria{}, apperrors.ErrInvalidPriceRange
	}
	return c, nil
}

func bound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, ok := ParsePrice(s)
	if !ok {
		return nil, apperrors.ErrInvalidPriceRange
	}
	return &v, nil
}

// Match reports whether l satisfies every set criterion. A listing whose
// price cannot be parsed is not excluded by the price range.
func (c Criteria) Match(l *models.Listing) bool {
	if c.Location != "" && !containsFold(l.Location, c.Location) {
		return false
	}

	if c.MinPrice != nil || c.MaxPrice != nil {
		if price, ok := ParsePrice(l.Price); ok {
			if c.MinPrice != nil && price < *c.MinPrice {
				return false
			}
			if c.MaxPrice != nil && price > *c.MaxPrice {
				return false
			}
		}
	}

	if c.Amenity != "" {
		found := false
		for _, a := range l.Amenities {
			if containsFold(a, c.Amenity) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Apply returns the listings matching c, keeping their order.
func Apply(listings []models.Listing, c Criteria) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for i := range listings {
		if c.Match(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Page slices listings for the 1-based page. Zero values pick the defaults.
func Page(listings []models.Listing, page, limit int) ([]models.Listing, models.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	total := len(listings)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return listings[start:end], models.NewPagination(page, limit, total)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
