// Package geo resolves postal addresses to coordinates.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/sdelacruz/yourplaces-be/internal/httperr"
	"github.com/sdelacruz/yourplaces-be/internal/models"
)

// Geocoder maps a free-text address to a coordinate pair.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (models.Location, error)
}

// StubGeocoder returns pseudo-random coordinates. It stands in for a real
// geocoding call when no API key is configured.
type StubGeocoder struct {
	rng *rand.Rand
}

// NewStubGeocoder creates a stub geocoder with a time-seeded source.
func NewStubGeocoder() *StubGeocoder {
	return &StubGeocoder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Resolve ignores the address and picks a uniformly random point,
// rounded to 8 decimal places.
func (g *StubGeocoder) Resolve(_ context.Context, _ string) (models.Location, error) {
	return models.Location{
		Lat: round8(g.rng.Float64()*180 - 90),
		Lng: round8(g.rng.Float64()*360 - 180),
	}, nil
}

func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

// RemoteGeocoder resolves addresses through an external geocoding HTTP API.
type RemoteGeocoder struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewRemoteGeocoder creates a geocoder backed by the service at endpoint.
func NewRemoteGeocoder(endpoint, apiKey string) *RemoteGeocoder {
	return &RemoteGeocoder{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location models.Location `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve queries the remote service and fails when no result is returned.
func (g *RemoteGeocoder) Resolve(ctx context.Context, address string) (models.Location, error) {
	reqURL := fmt.Sprintf("%s?address=%s&key=%s", g.endpoint, url.QueryEscape(address), url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return models.Location{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Location{}, httperr.Wrap(err, http.StatusInternalServerError, "Could not reach the geocoding service")
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return models.Location{}, httperr.Wrap(err, http.StatusInternalServerError, "Could not reach the geocoding service")
	}

	if decoded.Status == "ZERO_RESULTS" || len(decoded.Results) == 0 {
		return models.Location{}, httperr.New(http.StatusUnprocessableEntity, "Could not find location for the specified address")
	}

	return decoded.Results[0].Geometry.Location, nil
}
