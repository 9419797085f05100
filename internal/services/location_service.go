package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/geo"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
)

const (
	defaultStationName    = "Comisaría"
	defaultStationAddress = "Sin dirección"
)

var ErrEmptyAddress = fmt.Errorf("%w: address is required", dto.ErrInvalidInput)

// Geocoder resolves addresses and coordinates. *geo.NominatimClient satisfies it.
type Geocoder interface {
	Search(ctx context.Context, query string) (*geo.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (*geo.Place, error)
}

// StationFinder finds police facilities. *geo.OverpassClient satisfies it.
type StationFinder interface {
	PoliceStations(ctx context.Context, lat, lng float64, radiusMeters int) ([]geo.Element, error)
}

type LocationService struct {
	geocoder Geocoder
	stations StationFinder
	cache    cache.Cache
	bounds   geo.Bounds
	radiusM  int
	language string
	cacheTTL time.Duration
}

type LocationOptions struct {
	Bounds   geo.Bounds
	RadiusM  int
	Language string
	CacheTTL time.Duration
}

func NewLocationService(geocoder Geocoder, stations StationFinder, c cache.Cache, opts LocationOptions) *LocationService {
	if c == nil {
		c = cache.Noop{}
	}
	if opts.RadiusM <= 0 {
		opts.RadiusM = 5000
	}
	return &LocationService{
		geocoder: geocoder,
		stations: stations,
		cache:    c,
		bounds:   opts.Bounds,
		radiusM:  opts.RadiusM,
		language: opts.Language,
		cacheTTL: opts.CacheTTL,
	}
}

// Geocode turns a free-text address into a location. Zero matches yield
// geo.ErrNotFound; provider failures yield geo.ErrUpstream.
func (s *LocationService) Geocode(ctx context.Context, address string) (*models.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	key := fmt.Sprintf("geo:search:%s:%s", s.language, strings.ToLower(address))
	var loc models.Location
	if s.cached(ctx, key, &loc) {
		return &loc, nil
	}

	place, err := s.geocoder.Search(ctx, address)
	if err != nil {
		return nil, err
	}

	loc = models.Location{Lat: place.Lat, Lng: place.Lng, FormattedAddress: place.DisplayName}
	s.store(ctx, key, loc)
	return &loc, nil
}

// ValidateLocation admits a point only if it lies inside the service bounds
// and reverse-geocodes to an address. The bounds check never hits the network.
func (s *LocationService) ValidateLocation(ctx context.Context, lat, lng float64) (*dto.LocationValidationResponse, error) {
	if !s.bounds.Contains(lat, lng) {
		return nil, geo.ErrOutOfBounds
	}

	key := fmt.Sprintf("geo:reverse:%.6f,%.6f", lat, lng)
	var out dto.LocationValidationResponse
	if s.cached(ctx, key, &out) {
		return &out, nil
	}

	place, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	out = dto.LocationValidationResponse{IsValid: true, Address: place.DisplayName}
	s.store(ctx, key, out)
	return &out, nil
}

// LookupStations returns police stations within the configured radius,
// nearest first, or the provider error.
func (s *LocationService) LookupStations(ctx context.Context, lat, lng float64) ([]models.StationRef, error) {
	elements, err := s.stations.PoliceStations(ctx, lat, lng, s.radiusM)
	if err != nil {
		return nil, err
	}
	return RankStations(lat, lng, elements), nil
}

// NearbyStations is the advisory variant of LookupStations: provider
// failures are logged and produce an empty list.
func (s *LocationService) NearbyStations(ctx context.Context, lat, lng float64) []models.StationRef {
	stations, err := s.LookupStations(ctx, lat, lng)
	if err != nil {
		slog.Warn("police station lookup failed", "error", err, "lat", lat, "lng", lng)
		return []models.StationRef{}
	}
	return stations
}

// RankStations keeps tagged police nodes and orders them by great-circle
// distance from the query point. Ties keep provider order.
func RankStations(lat, lng float64, elements []geo.Element) []models.StationRef {
	out := make([]models.StationRef, 0, len(elements))
	for _, el := range elements {
		if el.Type != "node" || el.Tags["amenity"] != "police" {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = defaultStationName
		}
		addr := el.Tags["addr:street"]
		if addr == "" {
			addr = defaultStationAddress
		}

		out = append(out, models.StationRef{
			Name:       name,
			Address:    addr,
			Location:   models.GeoPoint{Lat: el.Lat, Lng: el.Lon},
			DistanceKm: geo.DistanceKm(lat, lng, el.Lat, el.Lon),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

func (s *LocationService) cached(ctx context.Context, key string, dst interface{}) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("geo cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *LocationService) store(ctx context.Context, key string, v interface{}) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("geo cache write failed", "key", key, "error", err)
	}
}
