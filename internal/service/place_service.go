package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"bizdir-backend/internal/config"
	"bizdir-backend/internal/observability"
)

// PlaceService wraps the external place lookup API. Every call is
// best-effort: a disabled or failing integration returns ErrPlacesDisabled or
// an error the caller degrades on, never a request failure.
type PlaceService struct {
	cfg     config.PlacesConfig
	client  *http.Client
	metrics *observability.SearchMetrics
	log     *zap.Logger
}

func NewPlaceService(cfg config.PlacesConfig, metrics *observability.SearchMetrics, log *zap.Logger) *PlaceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaceService{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout.Std()},
		metrics: metrics,
		log:     log,
	}
}

// Enabled reports whether the integration is configured and switched on.
func (s *PlaceService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.APIKey != ""
}

type PlacePrediction struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

type GeocodeResult struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formattedAddress"`
}

type NearbyPlace struct {
	PlaceID string  `json:"placeId"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Rating  float64 `json:"rating"`
	Types   string  `json:"types"`
}

// Autocomplete returns place predictions for a partial text input.
func (s *PlaceService) Autocomplete(ctx context.Context, text string) ([]PlacePrediction, error) {
	if !s.Enabled() {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Add("input", text)
	params.Add("key", s.cfg.APIKey)

	var body struct {
		Predictions []struct {
			PlaceID              string `json:"place_id"`
			Description          string `json:"description"`
			StructuredFormatting struct {
				MainText      string `json:"main_text"`
				SecondaryText string `json:"secondary_text"`
			} `json:"structured_formatting"`
		} `json:"predictions"`
	}
	if err := s.call(ctx, "autocomplete", "/place/autocomplete/json", params, &body); err != nil {
		return nil, err
	}
	out := make([]PlacePrediction, 0, len(body.Predictions))
	for _, p := range body.Predictions {
		out = append(out, PlacePrediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out, nil
}

// Geocode resolves an address string to coordinates.
func (s *PlaceService) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	if !s.Enabled() {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Add("address", address)
	params.Add("key", s.cfg.APIKey)

	var body struct {
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := s.call(ctx, "geocode", "/geocode/json", params, &body); err != nil {
		return nil, err
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("no geocode result for %q", address)
	}
	first := body.Results[0]
	return &GeocodeResult{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// PlaceDetails fetches the raw detail document for a place id.
func (s *PlaceService) PlaceDetails(ctx context.Context, placeID string) (map[string]interface{}, error) {
	if !s.Enabled() {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Add("place_id", placeID)
	params.Add("key", s.cfg.APIKey)

	var body struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := s.call(ctx, "details", "/place/details/json", params, &body); err != nil {
		return nil, err
	}
	return body.Result, nil
}

// NearbySearch finds external places around the coordinates.
func (s *PlaceService) NearbySearch(ctx context.Context, lat, lng float64, keyword string, radiusMeters int) ([]NearbyPlace, error) {
	if !s.Enabled() {
		return nil, ErrPlacesDisabled
	}
	params := url.Values{}
	params.Add("location", fmt.Sprintf("%.6f,%.6f", lat, lng))
	params.Add("radius", fmt.Sprintf("%d", radiusMeters))
	if keyword != "" {
		params.Add("keyword", keyword)
	}
	params.Add("key", s.cfg.APIKey)

	var body struct {
		Results []struct {
			PlaceID  string  `json:"place_id"`
			Name     string  `json:"name"`
			Rating   float64 `json:"rating"`
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := s.call(ctx, "nearby", "/place/nearbysearch/json", params, &body); err != nil {
		return nil, err
	}
	out := make([]NearbyPlace, 0, len(body.Results))
	for _, p := range body.Results {
		out = append(out, NearbyPlace{
			PlaceID: p.PlaceID,
			Name:    p.Name,
			Lat:     p.Geometry.Location.Lat,
			Lng:     p.Geometry.Location.Lng,
			Rating:  p.Rating,
		})
	}
	return out, nil
}

func (s *PlaceService) call(ctx context.Context, operation, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build place request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.ObservePlaceLookup(operation, "error")
		return fmt.Errorf("place lookup %s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.ObservePlaceLookup(operation, "error")
		return fmt.Errorf("place lookup %s: status %d", operation, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		s.metrics.ObservePlaceLookup(operation, "error")
		return fmt.Errorf("parse place response: %w", err)
	}
	s.metrics.ObservePlaceLookup(operation, "ok")
	return nil
}
