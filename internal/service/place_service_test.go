package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir-backend/internal/config"
)

func placeTestServer(t *testing.T, path, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, path, r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("key"), "api key must be forwarded")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
}

func TestPlaceServiceDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PlacesConfig
	}{
		{"switched off", config.PlacesConfig{Enabled: false, APIKey: "k"}},
		{"missing key", config.PlacesConfig{Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPlaceService(tt.cfg, nil, nil)
			assert.False(t, svc.Enabled())
			_, err := svc.Autocomplete(context.Background(), "mum")
			assert.ErrorIs(t, err, ErrPlacesDisabled)
			_, err = svc.Geocode(context.Background(), "mumbai")
			assert.ErrorIs(t, err, ErrPlacesDisabled)
		})
	}
}

func TestPlaceAutocomplete(t *testing.T) {
	srv := placeTestServer(t, "/place/autocomplete/json", `{
		"predictions": [
			{"place_id": "p1", "description": "Mumbai, India",
			 "structured_formatting": {"main_text": "Mumbai", "secondary_text": "India"}}
		]
	}`)
	defer srv.Close()

	svc := NewPlaceService(config.PlacesConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, nil, nil)
	preds, err := svc.Autocomplete(context.Background(), "mum")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "p1", preds[0].PlaceID)
	assert.Equal(t, "Mumbai", preds[0].MainText)
	assert.Equal(t, "India", preds[0].SecondaryText)
}

func TestPlaceGeocode(t *testing.T) {
	srv := placeTestServer(t, "/geocode/json", `{
		"results": [
			{"formatted_address": "Mumbai, Maharashtra, India",
			 "geometry": {"location": {"lat": 19.076, "lng": 72.8777}}}
		]
	}`)
	defer srv.Close()

	svc := NewPlaceService(config.PlacesConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, nil, nil)
	res, err := svc.Geocode(context.Background(), "mumbai")
	require.NoError(t, err)
	assert.Equal(t, 19.076, res.Lat)
	assert.Equal(t, 72.8777, res.Lng)
	assert.Equal(t, "Mumbai, Maharashtra, India", res.FormattedAddress)
}

func TestPlaceGeocodeNoResults(t *testing.T) {
	srv := placeTestServer(t, "/geocode/json", `{"results": []}`)
	defer srv.Close()

	svc := NewPlaceService(config.PlacesConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, nil, nil)
	_, err := svc.Geocode(context.Background(), "nowhere")
	assert.Error(t, err)
}

func TestPlaceLookupErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc := NewPlaceService(config.PlacesConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, nil, nil)
	_, err := svc.Autocomplete(context.Background(), "mum")
	assert.Error(t, err)
}

func TestPlaceNearbySearch(t *testing.T) {
	srv := placeTestServer(t, "/place/nearbysearch/json", `{
		"results": [
			{"place_id": "n1", "name": "Glow Salon", "rating": 4.4,
			 "geometry": {"location": {"lat": 19.07, "lng": 72.87}}}
		]
	}`)
	defer srv.Close()

	svc := NewPlaceService(config.PlacesConfig{Enabled: true, APIKey: "k", BaseURL: srv.URL}, nil, nil)
	places, err := svc.NearbySearch(context.Background(), 19.076, 72.8777, "salon", 3000)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Glow Salon", places[0].Name)
	assert.Equal(t, 4.4, places[0].Rating)
}
