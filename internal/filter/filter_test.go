package filter

import (
	"testing"

	apperrors "micasa/internal/errors"
	"micasa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,200/mo", 1200, true},
		{"1200", 1200, true},
		{"USD 950.50 per month", 950.5, true},
		{"€2.000", 2, true},
		{"$12,500,000", 12500000, true},
		{"Contact owner", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePrice(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr(v float64) *float64 { return &v }

func sample() []models.Listing {
	return []models.Listing{
		{LID: 1, Location: "Austin, TX", Price: "$1,200/mo", Amenities: []string{"WiFi", "Parking"}},
		{LID: 2, Location: "Dallas, TX", Price: "$2,500/mo", Amenities: []string{"Pool"}},
		{LID: 3, Location: "South Austin", Price: "Contact owner", Amenities: nil},
		{LID: 4, Location: "Denver, CO", Price: "800", Amenities: []string{"Garden", "parking garage"}},
	}
}

func lids(listings []models.Listing) []int64 {
	out := make([]int64, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.LID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []int64
	}{
		{"no criteria", Criteria{}, []int64{1, 2, 3, 4}},
		{"location is case insensitive substring", Criteria{Location: "austin"}, []int64{1, 3}},
		{"min price keeps unparseable", Criteria{MinPrice: ptr(1000)}, []int64{1, 2, 3}},
		{"max price keeps unparseable", Criteria{MaxPrice: ptr(1200)}, []int64{1, 3, 4}},
		{"price range", Criteria{MinPrice: ptr(1000), MaxPrice: ptr(2000)}, []int64{1, 3}},
		{"amenity substring", Criteria{Amenity: "PARK"}, []int64{1, 4}},
		{"combined", Criteria{Location: "tx", MaxPrice: ptr(2000), Amenity: "wifi"}, []int64{1}},
		{"no match", Criteria{Location: "Miami"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lids(Apply(sample(), tt.criteria)))
		})
	}
}

func TestFromQuery(t *testing.T) {
	t.Run("parses bounds", func(t *testing.T) {
		c, err := FromQuery(models.ListingQuery{Location: " austin ", MinPrice: "500", MaxPrice: "$2,000", Amenity: "pool"})

		require.NoError(t, err)
		assert.Equal(t, "austin", c.Location)
		assert.Equal(t, 500.0, *c.MinPrice)
		assert.Equal(t, 2000.0, *c.MaxPrice)
		assert.Equal(t, "pool", c.Amenity)
	})

	t.Run("empty bounds are unset", func(t *testing.T) {
		c, err := FromQuery(models.ListingQuery{})

		require.NoError(t, err)
		assert.Nil(t, c.MinPrice)
		assert.Nil(t, c.MaxPrice)
	})

	t.Run("rejects non numeric bound", func(t *testing.T) {
		_, err := FromQuery(models.ListingQuery{MinPrice: "cheap"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPriceRange)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		_, err := FromQuery(models.ListingQuery{MinPrice: "2000", MaxPrice: "100"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPriceRange)
	})
}

func TestPage(t *testing.T) {
	all := sample()

	items, p := Page(all, 1, 3)
	assert.Equal(t, []int64{1, 2, 3}, lids(items))
	assert.Equal(t, models.Pagination{Page: 1, Limit: 3, TotalItems: 4, TotalPages: 2}, p)

	items, p = Page(all, 2, 3)
	assert.Equal(t, []int64{4}, lids(items))
	assert.Equal(t, 2, p.Page)

	items, _ = Page(all, 5, 3)
	assert.Empty(t, items)

	_, p = Page(all, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	_, p = Page(all, 1, 1000)
	assert.Equal(t, MaxLimit, p.Limit)
}
