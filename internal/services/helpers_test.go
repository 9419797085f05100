package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/geo"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the domain tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Report{}, &models.Evidence{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role, email string) access.Actor {
	t.Helper()
	u := models.User{
		Email:      email,
		Password:   "x",
		Name:       "Test",
		Surname:    "User",
		NationalID: email,
		Role:       role,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&u).Error)
	return access.Actor{ID: u.ID, Role: role}
}

func ptr[T any](v T) *T { return &v }

// fakeLocator resolves everything inside Posadas and counts calls.
type fakeLocator struct {
	mu          sync.Mutex
	validations int
	geocodes    int
	validateErr error
	geocodeErr  error
	stations    []models.StationRef
}

func (f *fakeLocator) Geocode(ctx context.Context, address string) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodes++
	if f.geocodeErr != nil {
		return nil, f.geocodeErr
	}
	return &models.Location{Lat: -27.3671, Lng: -55.8961, FormattedAddress: address + ", Posadas, Misiones"}, nil
}

func (f *fakeLocator) ValidateLocation(ctx context.Context, lat, lng float64) (*dto.LocationValidationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations++
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if lat == 0 && lng == 0 {
		return nil, geo.ErrOutOfBounds
	}
	return &dto.LocationValidationResponse{IsValid: true, Address: "Av. Mitre, Posadas, Misiones"}, nil
}

func (f *fakeLocator) NearbyStations(ctx context.Context, lat, lng float64) []models.StationRef {
	if f.stations == nil {
		return []models.StationRef{}
	}
	return f.stations
}

func theftAt(lat, lng float64) *dto.CreateReportRequest {
	return &dto.CreateReportRequest{
		IncidentType: "THEFT",
		OccurredAt:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Location:     &dto.LocationInput{Lat: ptr(lat), Lng: ptr(lng)},
		Description:  "bike stolen",
	}
}
