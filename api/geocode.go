package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"quickcompare/models"
	"quickcompare/utils"
)

// ErrNoResults is returned when the provider answered but found nothing
// for the given coordinates, address, or query.
var ErrNoResults = fmt.Errorf("geocode: no results")

// GeocodeClient talks to the geocoding/places provider. Every call
// requires the API credential obtained through the backend's key
// endpoint; the caller passes it explicitly.
type GeocodeClient struct {
	baseURL string
	http    *http.Client
	logger  *utils.Logger
}

// NewGeocodeClient creates a GeocodeClient for the provider at baseURL.
func NewGeocodeClient(baseURL string, logger *utils.Logger) *GeocodeClient {
	return &GeocodeClient{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  logger,
	}
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type geocodeEnvelope struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

// ReverseGeocode resolves coordinates to structured address components:
// locality, first-level administrative region, and country.
func (g *GeocodeClient) ReverseGeocode(ctx context.Context, key string, lat, lon float64) (models.PlaceAddress, error) {
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("key", key)

	var env geocodeEnvelope
	if err := g.getJSON(ctx, "/geocode/json", q, &env); err != nil {
		return models.PlaceAddress{}, fmt.Errorf("reverse geocode: %w", err)
	}
	if env.Status != "OK" || len(env.Results) == 0 {
		return models.PlaceAddress{}, ErrNoResults
	}

	var addr models.PlaceAddress
	for _, comp := range env.Results[0].AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				addr.Locality = comp.LongName
			case "administrative_area_level_1":
				addr.AdminArea = comp.LongName
			case "country":
				addr.Country = comp.LongName
			}
		}
	}
	return addr, nil
}

// ForwardGeocode resolves a free-text address to coordinates.
func (g *GeocodeClient) ForwardGeocode(ctx context.Context, key, address string) (float64, float64, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", key)

	var env geocodeEnvelope
	if err := g.getJSON(ctx, "/geocode/json", q, &env); err != nil {
		return 0, 0, fmt.Errorf("forward geocode: %w", err)
	}
	if env.Status != "OK" || len(env.Results) == 0 {
		return 0, 0, ErrNoResults
	}
	loc := env.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

type prediction struct {
	PlaceID              string `json:"place_id"`
	Description          string `json:"description"`
	StructuredFormatting struct {
		MainText string `json:"main_text"`
	} `json:"structured_formatting"`
}

type autocompleteEnvelope struct {
	Status      string       `json:"status"`
	Predictions []prediction `json:"predictions"`
}

// Autocomplete maps a raw query to place suggestions.
func (g *GeocodeClient) Autocomplete(ctx context.Context, key, query string) ([]models.LocationSuggestion, error) {
	q := url.Values{}
	q.Set("input", query)
	q.Set("key", key)

	var env autocompleteEnvelope
	if err := g.getJSON(ctx, "/place/autocomplete/json", q, &env); err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	if env.Status != "OK" {
		return nil, ErrNoResults
	}

	suggestions := make([]models.LocationSuggestion, 0, len(env.Predictions))
	for _, p := range env.Predictions {
		name := p.StructuredFormatting.MainText
		if name == "" {
			name = p.Description
		}
		suggestions = append(suggestions, models.LocationSuggestion{
			ID:       p.PlaceID,
			Name:     name,
			FullName: p.Description,
		})
	}
	return suggestions, nil
}

func (g *GeocodeClient) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
