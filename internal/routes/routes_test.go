package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/geo"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubGeocoder struct{}

func (stubGeocoder) Search(ctx context.Context, query string) (*geo.Place, error) {
	return &geo.Place{Lat: -27.3671, Lng: -55.8961, DisplayName: query + ", Posadas, Misiones"}, nil
}

func (stubGeocoder) Reverse(ctx context.Context, lat, lng float64) (*geo.Place, error) {
	return &geo.Place{Lat: lat, Lng: lng, DisplayName: "Av. Mitre 1200, Posadas, Misiones"}, nil
}

type stubStations struct{}

func (stubStations) PoliceStations(ctx context.Context, lat, lng float64, radiusMeters int) ([]geo.Element, error) {
	return []geo.Element{
		{Type: "node", ID: 1, Lat: -27.3680, Lon: -55.8970, Tags: map[string]string{"amenity": "police", "name": "Comisaría Primera"}},
	}, nil
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:        "routes-test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		JWTResetExpiry:   time.Hour,
		CORSOrigins:      "*",
	}

	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	locations := services.NewLocationService(stubGeocoder{}, stubStations{}, nil, services.LocationOptions{
		Bounds:   geo.Bounds{North: -27.35, South: -27.40, East: -55.85, West: -55.95},
		Language: "es",
	})
	authService := services.NewAuthService(db, cfg)

	app := fiber.New()
	Setup(app, cfg, authService, Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(db, nil),
		Report:   handlers.NewReportHandler(services.NewReportService(db, locations)),
		Evidence: handlers.NewEvidenceHandler(services.NewEvidenceService(db, store), 1024*1024),
		Location: handlers.NewLocationHandler(locations),
		User:     handlers.NewUserHandler(authService),
	}, Options{})

	return &testServer{app: app, db: db}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

// register creates an account and, when role is not CITIZEN, promotes it
// directly in the database. Roles are read per request so the token stays valid.
func (s *testServer) register(t *testing.T, email, nationalID string, role models.Role) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":       email,
		"password":    "secret123",
		"name":        "Ana",
		"surname":     "Benítez",
		"national_id": nationalID,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))

	if role != models.RoleCitizen {
		require.NoError(t, s.db.Model(&models.User{}).Where("email = ?", email).Update("role", role).Error)
	}
	return auth.AccessToken
}

func (s *testServer) createReport(t *testing.T, token string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/reports/", token, map[string]interface{}{
		"incident_type": "THEFT",
		"occurred_at":   "2024-01-01T10:00:00Z",
		"location":      map[string]float64{"lat": -27.3671, "lng": -55.8961},
		"description":   "bike stolen",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	var report struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.NotEmpty(t, report.ID)
	return report.ID
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"cache":"disabled"`)
}

func TestReportsRequireAuthentication(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/api/reports/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestCreateReportAttachesNearbyStations(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	id := s.createReport(t, token)

	status, env := s.do(t, http.MethodGet, "/api/reports/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Comisaría Primera")
	assert.Contains(t, string(env.Data), `"status":"PENDING"`)
}

func TestCitizenCannotSeeOthersReport(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	other := s.register(t, "luis@example.com", "30333444", models.RoleCitizen)
	police := s.register(t, "agente@example.com", "30555666", models.RolePolice)
	id := s.createReport(t, owner)

	status, _ := s.do(t, http.MethodGet, "/api/reports/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodGet, "/api/reports/"+id, police, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCitizenCannotChangeStatus(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	id := s.createReport(t, owner)

	status, env := s.do(t, http.MethodPut, "/api/reports/"+id, owner, map[string]string{
		"status":      "RESOLVED",
		"description": "bike stolen near the plaza",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Contains(t, string(env.Data), `"status":"PENDING"`)
	assert.Contains(t, string(env.Data), "near the plaza")
}

func TestStatisticsRequiresStaff(t *testing.T) {
	s := newTestServer(t)
	citizen := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	admin := s.register(t, "jefa@example.com", "30999000", models.RoleAdmin)
	s.createReport(t, citizen)

	status, _ := s.do(t, http.MethodGet, "/api/reports/statistics", citizen, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := s.do(t, http.MethodGet, "/api/reports/statistics", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"total":1`)
}

func TestInvalidReportID(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)

	status, _ := s.do(t, http.MethodGet, "/api/reports/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListRejectsBadPagination(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)

	status, _ := s.do(t, http.MethodGet, "/api/reports/?limit=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/reports/?incidentType=THEFT&page=1&limit=5", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestValidateLocationOutOfBounds(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, http.MethodGet, "/api/locations/validate?lat=0&lng=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/locations/validate?lat=abc&lng=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(t, http.MethodGet, "/api/locations/validate?lat=-27.3671&lng=-55.8961", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"is_valid":true`)
}

func TestEvidenceUploadAndRemove(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	other := s.register(t, "luis@example.com", "30333444", models.RoleCitizen)
	id := s.createReport(t, owner)

	upload := func(token string) (int, envelope) {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="foto.PNG"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\nnot really an image"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/reports/"+id+"/evidences", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return s.send(t, req, token)
	}

	status, _ := upload(other)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := upload(owner)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var ev struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Format string `json:"format"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, "IMAGE", ev.Kind)
	assert.Equal(t, "png", ev.Format)

	status, _ = s.do(t, http.MethodDelete, "/api/reports/"+id+"/evidences/"+ev.ID, owner, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, "/api/reports/"+id+"/evidences/"+ev.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	police := s.register(t, "agente@example.com", "30555666", models.RolePolice)

	var target models.User
	s.register(t, "ana@example.com", "30111222", models.RoleCitizen)
	require.NoError(t, s.db.Where("email = ?", "ana@example.com").First(&target).Error)

	status, _ := s.do(t, http.MethodPut, "/api/admin/users/"+target.ID.String()+"/role", police, map[string]string{"role": "POLICE"})
	assert.Equal(t, http.StatusForbidden, status)
}
