package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Place is a single geocoder answer.
type Place struct {
	Lat         float64
	Lng         float64
	DisplayName string
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NominatimClient talks to an OpenStreetMap Nominatim instance.
type NominatimClient struct {
	baseURL   string
	userAgent string
	language  string
	client    *http.Client
}

func NewNominatimClient(baseURL, userAgent, language string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		language:  language,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *NominatimClient) Language() string {
	return c.language
}

// Search returns the single best match for a free-text address.
func (c *NominatimClient) Search(ctx context.Context, query string) (*Place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	params.Set("accept-language", c.language)

	var results []nominatimPlace
	if err := c.get(ctx, "/search", params, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0].toPlace()
}

// Reverse resolves coordinates to the nearest addressable place.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lng float64) (*Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("accept-language", c.language)

	var result nominatimPlace
	if err := c.get(ctx, "/reverse", params, &result); err != nil {
		return nil, err
	}
	if result.Error != "" || result.DisplayName == "" {
		return nil, ErrUnresolvableLocation
	}
	place, err := result.toPlace()
	if err != nil {
		// Some reverse answers omit coordinates; the query point is authoritative.
		return &Place{Lat: lat, Lng: lng, DisplayName: result.DisplayName}, nil
	}
	return place, nil
}

func (c *NominatimClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: nominatim status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode nominatim response: %v", ErrUpstream, err)
	}
	return nil
}

func (p nominatimPlace) toPlace() (*Place, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", ErrUpstream, p.Lat)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", ErrUpstream, p.Lon)
	}
	return &Place{Lat: lat, Lng: lng, DisplayName: p.DisplayName}, nil
}
