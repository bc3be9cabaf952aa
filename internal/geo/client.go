// Package geo implements the client for the GSI address search API
// (国土地理院), which resolves a postal address string to coordinates.
// The repo and service layers depend on the Geocoder interface defined
// by their consumers, not on this concrete client.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ymorita/store-directory/internal/domain"
)

// addressSearchPath is the GSI address search endpoint, relative to the
// configured base URL.
const addressSearchPath = "/address-search/AddressSearch"

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Client issues address lookups against the GSI API.
// Construct with NewClient; the zero value is not usable.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client targeting baseURL with a fixed per-request
// timeout. One request per lookup, no retries.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// gsiFeature mirrors the subset of the upstream GeoJSON payload we read.
type gsiFeature struct {
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

// Lookup resolves address to coordinates with a single upstream request.
//
// The upstream payload carries coordinates in GeoJSON [longitude, latitude]
// order; the returned Coordinates swap them into (latitude, longitude).
//
// Failures classify into exactly one of:
//   - domain.ErrGeocoderUnreachable: connection/timeout failure, or a
//     non-2xx upstream status
//   - domain.ErrAddressNotFound: empty result list, or a first result
//     without a usable coordinate pair
//   - domain.ErrGeocoderFault: any other failure issuing or parsing
func (c *Client) Lookup(ctx context.Context, address string) (Coordinates, error) {
	u := c.baseURL + addressSearchPath + "?q=" + url.QueryEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: %v", domain.ErrGeocoderFault, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: %v", domain.ErrGeocoderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: status %d", domain.ErrGeocoderUnreachable, resp.StatusCode)
	}

	var features []gsiFeature
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: decode: %v", domain.ErrGeocoderFault, err)
	}

	if len(features) == 0 {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: %q", domain.ErrAddressNotFound, address)
	}
	geom := features[0].Geometry
	if geom == nil || len(geom.Coordinates) < 2 {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w: %q", domain.ErrAddressNotFound, address)
	}

	return Coordinates{Lat: geom.Coordinates[1], Lng: geom.Coordinates[0]}, nil
}
