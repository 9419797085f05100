package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration
	JWTResetExpiry   time.Duration

	// Geocoding / points of interest
	NominatimURL   string
	OverpassURL    string
	GeoUserAgent   string
	GeoLanguage    string
	GeoTimeout     time.Duration
	GeoCacheTTL    time.Duration
	StationRadiusM int
	BoundsNorth    float64
	BoundsSouth    float64
	BoundsEast     float64
	BoundsWest     float64

	// Redis (optional: geocode cache + shared rate-limit counters)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Evidence storage
	StorageDriver   string
	UploadDir       string
	UploadURLPrefix string
	MaxFileSizeMB   int

	S3Bucket          string
	S3Region          string
	S3EndpointURL     string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string

	LogRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "denuncias_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		JWTResetExpiry:   parseDuration(getEnv("JWT_RESET_EXPIRY", "1h"), time.Hour),

		NominatimURL:   getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		OverpassURL:    getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GeoUserAgent:   getEnv("GEO_USER_AGENT", "PosadasDenuncias/1.0"),
		GeoLanguage:    getEnv("GEO_LANGUAGE", "es"),
		GeoTimeout:     parseDuration(getEnv("GEO_TIMEOUT", "10s"), 10*time.Second),
		GeoCacheTTL:    parseDuration(getEnv("GEO_CACHE_TTL", "24h"), 24*time.Hour),
		StationRadiusM: parseInt(getEnv("STATION_RADIUS_M", "5000"), 5000),
		BoundsNorth:    parseFloat(getEnv("BOUNDS_NORTH", "-27.35"), -27.35),
		BoundsSouth:    parseFloat(getEnv("BOUNDS_SOUTH", "-27.40"), -27.40),
		BoundsEast:     parseFloat(getEnv("BOUNDS_EAST", "-55.85"), -55.85),
		BoundsWest:     parseFloat(getEnv("BOUNDS_WEST", "-55.95"), -55.95),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     parseInt(getEnv("REDIS_PORT", "6379"), 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		StorageDriver:   getEnv("STORAGE_DRIVER", "local"),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix: getEnv("UPLOAD_URL_PREFIX", "/uploads"),
		MaxFileSizeMB:   parseInt(getEnv("MAX_FILE_SIZE_MB", "5"), 5),

		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3EndpointURL:     getEnv("S3_ENDPOINT_URL", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "dev"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// MaxFileSizeBytes is the upload ceiling for a single evidence file.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
