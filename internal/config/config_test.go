package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GEO_TIMEOUT", "")
	t.Setenv("STATION_RADIUS_M", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.GeoTimeout)
	assert.Equal(t, 5000, cfg.StationRadiusM)
	assert.Equal(t, -27.35, cfg.BoundsNorth)
	assert.Equal(t, -55.95, cfg.BoundsWest)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEO_TIMEOUT", "3s")
	t.Setenv("MAX_FILE_SIZE_MB", "2")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("BOUNDS_NORTH", "-1.5")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.GeoTimeout)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, -1.5, cfg.BoundsNorth)
}

func TestLoadFallsBackOnGarbage(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")
	t.Setenv("REDIS_PORT", "six")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, 6379, cfg.RedisPort)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
