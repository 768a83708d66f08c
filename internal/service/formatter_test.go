package service

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir-backend/internal/dto"
	"bizdir-backend/internal/model"
)

func TestProjectPublicFields(t *testing.T) {
	f := NewFormatter("test-key")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	listing := &model.BusinessListing{
		ID:          7,
		Name:        "Glow Salon",
		Slug:        "glow-salon",
		Category:    "Beauty",
		Area:        "Andheri",
		City:        "Mumbai",
		State:       "Maharashtra",
		Images:      "a.jpg, b.jpg",
		RatingAvg:   4.4,
		ReviewCount: 120,
		OpenHours:   "09:00-21:00",
		Offers:      "10% off",
		Description: "A calm place",
	}
	dist := 1530.0
	views := f.Project([]Candidate{{Listing: listing, Distance: &dist}}, now)

	require.Len(t, views, 1)
	v := views[0]
	assert.Equal(t, int64(7), v.ID)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, v.Images)
	assert.Equal(t, 4.4, v.Rating.Average)
	assert.Equal(t, int64(120), v.Rating.Count)
	assert.True(t, v.IsOpen)
	assert.Equal(t, []string{"10% off"}, v.Offers)
	require.NotNil(t, v.Distance)
	assert.Equal(t, 1530.0, *v.Distance)
	assert.Equal(t, "1.5 km", v.DistanceText)
}

func TestProjectDistanceText(t *testing.T) {
	f := NewFormatter("k")
	tests := []struct {
		meters float64
		want   string
	}{
		{120, "120 m"},
		{999, "999 m"},
		{1000, "1.0 km"},
		{2750, "2.8 km"},
	}
	for _, tt := range tests {
		d := tt.meters
		views := f.Project([]Candidate{{Listing: &model.BusinessListing{}, Distance: &d}}, time.Now())
		assert.Equal(t, tt.want, views[0].DistanceText)
	}
}

func TestProjectNoDistanceWithoutGeo(t *testing.T) {
	f := NewFormatter("k")
	views := f.Project([]Candidate{{Listing: &model.BusinessListing{}}}, time.Now())
	assert.Nil(t, views[0].Distance)
	assert.Empty(t, views[0].DistanceText)
}

func TestProjectDescriptionSnippet(t *testing.T) {
	f := NewFormatter("k")
	long := strings.Repeat("word ", 60) // 300 chars
	views := f.Project([]Candidate{{Listing: &model.BusinessListing{Description: long}}}, time.Now())

	got := views[0].Description
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(strings.TrimSuffix(got, "…"))), descriptionSnippetLen)
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "…"), " "), "cut lands on a word boundary")
}

func TestProjectSnippetKeepsRunesIntact(t *testing.T) {
	f := NewFormatter("k")
	// 60 three-byte runes and no spaces: the byte cut lands mid-rune and no
	// word boundary can rescue it.
	long := strings.Repeat("日", 60)
	views := f.Project([]Candidate{{Listing: &model.BusinessListing{Description: long}}}, time.Now())

	got := views[0].Description
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(strings.TrimSuffix(got, "…")), descriptionSnippetLen)
}

func TestProjectServicePreview(t *testing.T) {
	f := NewFormatter("k")
	listing := &model.BusinessListing{}
	for i := 1; i <= 8; i++ {
		listing.Services = append(listing.Services, model.ServiceOffering{
			Name:         "svc",
			Price:        float64(i * 100),
			Active:       i != 2, // one inactive row must be skipped
			DisplayOrder: 10 - i,
		})
	}
	views := f.Project([]Candidate{{Listing: listing}}, time.Now())

	services := views[0].Services
	require.Len(t, services, 5)
	// DisplayOrder ascending means the highest-index rows come first.
	assert.Equal(t, 800.0, services[0].Price)
	for _, s := range services {
		assert.NotEqual(t, 200.0, s.Price, "inactive services never appear")
	}
}

func TestPackageUnpackageRoundTrip(t *testing.T) {
	f := NewFormatter("directory-key")
	views := f.Project([]Candidate{
		{Listing: &model.BusinessListing{ID: 1, Name: "Alpha", City: "Mumbai"}},
		{Listing: &model.BusinessListing{ID: 2, Name: "Beta", City: "Pune"}},
	}, time.Now())

	payload, err := f.Package(views)
	require.NoError(t, err)
	assert.NotContains(t, payload, "Alpha", "payload must not carry plaintext")

	decoded, err := f.Unpackage(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "Alpha", decoded[0].Name)
	assert.Equal(t, "Pune", decoded[1].City)
}

func TestUnpackageWrongKeyFails(t *testing.T) {
	views := []dto.ListingView{{ID: 1, Name: "Alpha"}}
	payload, err := NewFormatter("north").Package(views)
	require.NoError(t, err)
	_, err = NewFormatter("southbound").Unpackage(payload)
	assert.Error(t, err)
}
