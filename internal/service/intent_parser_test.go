package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bizdir-backend/internal/config"
)

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		Country:          "India",
		QualityMinRating: 4.0,
		BroadRadiusKm:    2000,
		SpecificRadiusKm: 100,
		DefaultRadiusKm:  5,
		NearbyRadiusKm:   3,
	}
}

func testLocationIndex() *LocationIndex {
	return NewLocationIndex("India", map[string][]string{
		"Maharashtra": {"Mumbai", "Pune"},
		"Karnataka":   {"Bengaluru"},
	})
}

func TestParseNearMe(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	tests := []struct {
		name        string
		query       string
		wantNearMe  bool
		wantKeyword string
	}{
		{"trailing near me", "salon near me", true, "salon"},
		{"nearby synonym", "nearby gyms", true, "gyms"},
		{"mid phrase", "spa near me with parking", true, "spa with parking"},
		{"case insensitive", "Salon NEAR ME", true, "Salon"},
		{"substring not stripped", "nearbyshop", false, "nearbyshop"},
		{"plain query", "salon", false, "salon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := parser.Parse(SearchParams{Query: tt.query}, 5)
			assert.Equal(t, tt.wantNearMe, intent.IsNearMe)
			assert.Equal(t, tt.wantKeyword, intent.Keyword)
		})
	}
}

func TestParseQualityIntent(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	t.Run("best prefix sets rating floor", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Query: "best salon"}, 5)
		assert.True(t, intent.IsQualitySearch)
		assert.Equal(t, "salon", intent.Keyword)
		assert.Equal(t, 4.0, intent.MinRating)
	})

	t.Run("top prefix", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Query: "Top gyms"}, 5)
		assert.True(t, intent.IsQualitySearch)
		assert.Equal(t, "gyms", intent.Keyword)
	})

	t.Run("caller rating wins over default", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Query: "best salon", MinRating: 3.5}, 5)
		assert.True(t, intent.IsQualitySearch)
		assert.Equal(t, 3.5, intent.MinRating)
	})

	t.Run("best inside keyword is not quality", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Query: "the best salon"}, 5)
		assert.False(t, intent.IsQualitySearch)
		assert.Zero(t, intent.MinRating)
	})
}

func TestParseLocationSplit(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	tests := []struct {
		name         string
		query        string
		location     string
		wantKeyword  string
		wantLocation string
		wantClass    LocationClass
	}{
		{"in split", "salon in Mumbai", "", "salon", "Mumbai", LocationSpecific},
		{"at split", "gym at Pune", "", "gym", "Pune", LocationSpecific},
		{"near split", "spa near Bengaluru", "", "spa", "Bengaluru", LocationSpecific},
		{"from split", "barber from Mumbai", "", "barber", "Mumbai", LocationSpecific},
		{"broad region", "salon in Maharashtra", "", "salon", "Maharashtra", LocationBroad},
		{"country is broad", "salon in India", "", "salon", "India", LocationBroad},
		{"explicit location wins", "salon in Mumbai", "Pune", "salon in Mumbai", "Pune", LocationSpecific},
		{"no connector", "salon mumbai", "", "salon mumbai", "", LocationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := parser.Parse(SearchParams{Query: tt.query, Location: tt.location}, 5)
			assert.Equal(t, tt.wantKeyword, intent.Keyword)
			assert.Equal(t, tt.wantLocation, intent.Location)
			assert.Equal(t, tt.wantClass, intent.LocationClass)
		})
	}
}

func TestParseUnknownLocationReclassified(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	t.Run("lone unknown location becomes keyword", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Location: "haircut deluxe"}, 5)
		assert.Equal(t, "haircut deluxe", intent.Keyword)
		assert.Empty(t, intent.Location)
		assert.False(t, intent.HasLocationFilter)
	})

	t.Run("kept as location when another filter narrows", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Location: "andheri west", Category: "salon"}, 5)
		assert.Empty(t, intent.Keyword)
		assert.Equal(t, "andheri west", intent.Location)
		assert.True(t, intent.HasLocationFilter)
	})

	t.Run("kept when keyword present", func(t *testing.T) {
		intent := parser.Parse(SearchParams{Query: "salon", Location: "andheri"}, 5)
		assert.Equal(t, "salon", intent.Keyword)
		assert.Equal(t, "andheri", intent.Location)
	})
}

func TestParseRetainedLocationIsSpecific(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	// A neighbourhood the index does not list is still a concrete place; it
	// resolves the specific radius, not the endpoint default.
	intent := parser.Parse(SearchParams{Query: "salon", Location: "Andheri"}, 5)
	assert.Equal(t, LocationSpecific, intent.LocationClass)
	assert.Equal(t, 100.0*1000, intent.RadiusM)

	intent = parser.Parse(SearchParams{Location: "Andheri", Category: "salon"}, 5)
	assert.Equal(t, LocationSpecific, intent.LocationClass)
	assert.Equal(t, 100.0*1000, intent.RadiusM)

	// A reclassified location leaves no location filter behind, so the
	// default radius stands.
	intent = parser.Parse(SearchParams{Location: "haircut deluxe"}, 5)
	assert.Equal(t, LocationUnknown, intent.LocationClass)
	assert.Equal(t, 5.0*1000, intent.RadiusM)
}

func TestResolveRadius(t *testing.T) {
	parser := NewIntentParser(testLocationIndex(), testSearchConfig())

	tests := []struct {
		name    string
		params  SearchParams
		defKm   float64
		wantM   float64
	}{
		{"broad location", SearchParams{Location: "Maharashtra"}, 5, 2000 * 1000},
		{"specific location", SearchParams{Location: "Mumbai"}, 5, 100 * 1000},
		{"caller radius", SearchParams{RadiusM: 1200}, 5, 1200},
		{"endpoint default", SearchParams{}, 3, 3000},
		{"broad beats caller radius", SearchParams{Location: "Maharashtra", RadiusM: 500}, 5, 2000 * 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := parser.Parse(tt.params, tt.defKm)
			assert.Equal(t, tt.wantM, intent.RadiusM)
		})
	}
}

func TestIntentDirected(t *testing.T) {
	assert.True(t, (&SearchIntent{Keyword: "salon"}).Directed())
	assert.True(t, (&SearchIntent{HasGeo: true}).Directed())
	assert.True(t, (&SearchIntent{IsNearMe: true}).Directed())
	assert.False(t, (&SearchIntent{Location: "Mumbai"}).Directed())
	assert.False(t, (&SearchIntent{}).Directed())
}
