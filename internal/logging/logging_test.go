package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.SystemLog{}))
	return db
}

type countingHandler struct {
	level slog.Level
	n     int
	err   error
}

func (c *countingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }
func (c *countingHandler) Handle(context.Context, slog.Record) error    { c.n++; return c.err }
func (c *countingHandler) WithAttrs([]slog.Attr) slog.Handler           { return c }
func (c *countingHandler) WithGroup(string) slog.Handler                { return c }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	info := &countingHandler{level: slog.LevelInfo}
	errs := &countingHandler{level: slog.LevelError}
	log := slog.New(NewMultiHandler(info, nil, errs))

	log.Debug("skipped")
	log.Info("one")
	log.Error("two")

	assert.Equal(t, 2, info.n)
	assert.Equal(t, 1, errs.n)
}

func TestMultiHandlerKeepsDeliveringAfterFailure(t *testing.T) {
	broken := &countingHandler{level: slog.LevelInfo, err: errors.New("sink down")}
	healthy := &countingHandler{level: slog.LevelInfo}
	h := NewMultiHandler(broken, healthy)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
	require.Error(t, err)
	assert.Equal(t, 1, broken.n)
	assert.Equal(t, 1, healthy.n)
}

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := setupTestDB(t)
	h := NewPGHandler(db, time.Hour)
	log := slog.New(h).With("user_id", "u-1")

	log.Info("ignored")
	log.Error("upload failed",
		"report_id", "r-1",
		"action", "evidence_add",
		"error", "disk full",
		"latency_ms", 12.6,
		"key", "abc.jpg",
	)
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "upload failed", row.Message)
	require.NotNil(t, row.ReportID)
	assert.Equal(t, "r-1", *row.ReportID)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u-1", *row.UserID)
	assert.Equal(t, "evidence_add", row.Action)
	assert.Equal(t, "disk full", row.Error)
	assert.Equal(t, 13, row.LatencyMs)
	assert.JSONEq(t, `{"key":"abc.jpg"}`, string(row.Extra))
}

func TestPGHandlerWritesAfterStop(t *testing.T) {
	db := setupTestDB(t)
	h := NewPGHandler(db, time.Hour)
	log := slog.New(h)

	log.Error("before stop")
	h.Stop()
	h.Stop()
	log.Error("during shutdown", "report_id", "r-9")

	var rows []models.SystemLog
	require.NoError(t, db.Order("timestamp").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "before stop", rows[0].Message)
	assert.Equal(t, "during shutdown", rows[1].Message)
}

func TestPurge(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"},
		{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"},
	}).Error)

	deleted, err := Purge(db, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var left []models.SystemLog
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "recent", left[0].Message)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFor("dev"))
	assert.Equal(t, slog.LevelInfo, levelFor("production"))
}
