package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Element is a raw Overpass result. Only nodes carry Lat/Lon directly.
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// OverpassClient queries the OpenStreetMap Overpass API for points of interest.
type OverpassClient struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewOverpassClient(endpoint, userAgent string, timeout time.Duration) *OverpassClient {
	return &OverpassClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// PoliceStations returns every element tagged amenity=police within
// radiusMeters of the point.
func (c *OverpassClient) PoliceStations(ctx context.Context, lat, lng float64, radiusMeters int) ([]Element, error) {
	form := url.Values{}
	form.Set("data", policeQuery(lat, lng, radiusMeters))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: overpass status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var out overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode overpass response: %v", ErrUpstream, err)
	}
	return out.Elements, nil
}

func policeQuery(lat, lng float64, radius int) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radius, lat, lng)
	return "[out:json][timeout:25];(" +
		`node["amenity"="police"]` + around + ";" +
		`way["amenity"="police"]` + around + ";" +
		`relation["amenity"="police"]` + around + ";" +
		");out body;>;out skel qt;"
}
