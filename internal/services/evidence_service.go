package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sniffLen = 3072

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type EvidenceService struct {
	db    *gorm.DB
	store storage.BlobStore
}

func NewEvidenceService(db *gorm.DB, store storage.BlobStore) *EvidenceService {
	return &EvidenceService{db: db, store: store}
}

// Add stores the blob, then records it against a report the actor can see.
// Every failure after the blob is written removes the blob again.
func (s *EvidenceService) Add(ctx context.Context, actor access.Actor, reportID uuid.UUID, up Upload) (*models.Evidence, error) {
	contentType, body, err := detectContentType(up.ContentType, up.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := uuid.New().String() + ext

	url, err := s.store.Put(ctx, key, body, up.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store evidence: %w", err)
	}

	if err := s.checkReport(ctx, actor, reportID); err != nil {
		s.discard(key, reportID)
		return nil, err
	}

	ev := models.Evidence{
		ReportID:         reportID,
		Kind:             KindFor(contentType),
		StorageURL:       url,
		StorageKey:       key,
		OriginalFilename: up.Filename,
		SizeBytes:        up.Size,
		Format:           strings.TrimPrefix(ext, "."),
	}
	if err := s.db.WithContext(ctx).Create(&ev).Error; err != nil {
		s.discard(key, reportID)
		return nil, fmt.Errorf("failed to save evidence: %w", err)
	}

	slog.Info("evidence added", "report_id", reportID.String(), "user_id", actor.ID.String(),
		"kind", ev.Kind, "size", ev.SizeBytes)
	return &ev, nil
}

func (s *EvidenceService) List(ctx context.Context, actor access.Actor, reportID uuid.UUID) ([]models.Evidence, error) {
	if err := s.checkReport(ctx, actor, reportID); err != nil {
		return nil, err
	}

	evidences := []models.Evidence{}
	if err := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&evidences).Error; err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return evidences, nil
}

// Remove deletes the row first and the blob afterwards. A blob that cannot
// be deleted is logged and left behind.
func (s *EvidenceService) Remove(ctx context.Context, actor access.Actor, reportID, evidenceID uuid.UUID) error {
	if err := s.checkReport(ctx, actor, reportID); err != nil {
		return err
	}

	var ev models.Evidence
	err := s.db.WithContext(ctx).
		Where("id = ? AND report_id = ?", evidenceID, reportID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEvidenceNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load evidence: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&ev).Error; err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}

	if key := blobKey(&ev); key != "" {
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("evidence blob not removed", "report_id", reportID.String(), "key", key, "error", err)
		}
	}
	return nil
}

// KindFor maps a media type onto an evidence kind.
func KindFor(contentType string) models.EvidenceKind {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case strings.HasPrefix(mt, "image/"):
		return models.EvidenceImage
	case mt == "video/mp4":
		return models.EvidenceVideo
	case strings.HasPrefix(mt, "audio/"):
		return models.EvidenceAudio
	default:
		return models.EvidenceOther
	}
}

func (s *EvidenceService) checkReport(ctx context.Context, actor access.Actor, reportID uuid.UUID) error {
	var report models.Report
	err := s.db.WithContext(ctx).Scopes(access.VisibleTo(actor)).
		Select("id").First(&report, "reports.id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	return nil
}

// discard removes a blob whose row was never written. It runs detached from
// the request context so a cancelled request still cleans up.
func (s *EvidenceService) discard(key string, reportID uuid.UUID) {
	if err := s.store.Delete(context.Background(), key); err != nil {
		slog.Error("orphaned evidence blob", "report_id", reportID.String(), "key", key, "error", err)
	}
}

// detectContentType trusts a specific declared type and sniffs the first
// bytes otherwise. After sniffing, the returned reader yields the full
// original content and is seekable.
func detectContentType(declared string, body io.Reader) (string, io.Reader, error) {
	if declared != "" && declared != "application/octet-stream" {
		return declared, body, nil
	}

	if rs, ok := body.(io.ReadSeeker); ok {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(rs, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return "", nil, err
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return "", nil, err
		}
		return mimetype.Detect(head[:n]).String(), rs, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", nil, err
	}
	return mimetype.Detect(data).String(), bytes.NewReader(data), nil
}

// blobKey falls back to the URL's last segment for rows written before keys
// were recorded. Inline evidence pointing at external media has neither.
func blobKey(ev *models.Evidence) string {
	if ev.StorageKey != "" {
		return ev.StorageKey
	}
	if strings.HasPrefix(ev.StorageURL, "/uploads/") {
		return path.Base(ev.StorageURL)
	}
	return ""
}
