package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Geocoder converts a postal address into coordinates. The endpoint is
// expected to answer GET <base>?q=<address> with a JSON array of candidates
// carrying lat/lon fields (Nominatim-style).
type Geocoder struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// ErrNoMatch is returned when the provider finds no candidate.
var ErrNoMatch = errors.New("no geocoding match")

func NewGeocoder(baseURL string, log *zap.Logger) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

type geocodeCandidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the first candidate's coordinates. A disabled provider
// (empty base URL) reports ErrNoMatch so callers store zero coordinates.
func (g *Geocoder) Geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	if g.baseURL == "" {
		return 0, 0, ErrNoMatch
	}
	u := g.baseURL + "?format=json&q=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("geocode request failed", zap.Error(err))
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, errStatus(resp.StatusCode)
	}

	var candidates []geocodeCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return 0, 0, err
	}
	if len(candidates) == 0 {
		return 0, 0, ErrNoMatch
	}
	lat, err = parseCoord(candidates[0].Lat)
	if err != nil {
		return 0, 0, err
	}
	lng, err = parseCoord(candidates[0].Lon)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func parseCoord(s string) (float64, error) {
	var f float64
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return 0, err
	}
	return f, nil
}
