package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Locator is the part of LocationService the report lifecycle depends on.
type Locator interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
	ValidateLocation(ctx context.Context, lat, lng float64) (*dto.LocationValidationResponse, error)
	NearbyStations(ctx context.Context, lat, lng float64) []models.StationRef
}

type ReportService struct {
	db      *gorm.DB
	locator Locator
}

func NewReportService(db *gorm.DB, locator Locator) *ReportService {
	return &ReportService{db: db, locator: locator}
}

// Create resolves the report location, snapshots nearby stations and stores
// the report together with any inline evidence rows.
func (s *ReportService) Create(ctx context.Context, actor access.Actor, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
	loc, err := s.resolve(ctx, req.Location, req.Address)
	if err != nil {
		return nil, err
	}

	report := models.Report{
		IncidentType:   models.IncidentType(req.IncidentType),
		OccurredAt:     req.OccurredAt,
		Location:       *loc,
		Address:        loc.FormattedAddress,
		Description:    req.Description,
		NearbyStations: datatypes.JSONSlice[models.StationRef](s.locator.NearbyStations(ctx, loc.Lat, loc.Lng)),
		CreatedBy:      actor.ID,
	}

	triage := access.FilterPatch(actor.Role, map[access.Field]interface{}{
		access.FieldStatus:   models.ReportStatus(req.Status),
		access.FieldPriority: models.Priority(req.Priority),
	})
	if v, ok := triage[access.FieldStatus].(models.ReportStatus); ok && v != "" {
		report.Status = v
	}
	if v, ok := triage[access.FieldPriority].(models.Priority); ok && v != "" {
		report.Priority = v
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		for _, in := range req.Evidences {
			ev := models.Evidence{
				ReportID:         report.ID,
				Kind:             models.EvidenceKind(in.Kind),
				StorageURL:       in.StorageURL,
				OriginalFilename: in.OriginalFilename,
				SizeBytes:        in.SizeBytes,
				Format:           in.Format,
			}
			if err := tx.Create(&ev).Error; err != nil {
				return fmt.Errorf("failed to attach evidence %q: %w", in.OriginalFilename, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("report created", "report_id", report.ID.String(), "user_id", actor.ID.String(),
		"stations", len(report.NearbyStations))
	return s.load(ctx, actor, report.ID)
}

// List returns one page of the reports visible to the actor, newest incident first.
func (s *ReportService) List(ctx context.Context, actor access.Actor, filter *dto.ReportFilter) (*dto.ReportListResponse, error) {
	page := filter.PageOrDefault()
	limit := filter.LimitOrDefault()

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Report{}).Scopes(access.VisibleTo(actor))
		if filter.IncidentType != "" {
			query = query.Where("incident_type = ?", filter.IncidentType)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			query = query.Where("priority = ?", filter.Priority)
		}
		if from, to, ok := filter.DateRange(); ok {
			query = query.Where("occurred_at BETWEEN ? AND ?", from, to)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	var reports []models.Report
	offset := (page - 1) * limit
	if err := filtered().Preload("Evidences").Preload("Creator").
		Order("occurred_at DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.NewReportResponse(&reports[i]))
	}

	return &dto.ReportListResponse{
		Items:     items,
		Total:     total,
		Page:      page,
		Limit:     limit,
		PageCount: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get returns a report visible to the actor. Absent and hidden reports are
// both ErrReportNotFound.
func (s *ReportService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*dto.ReportResponse, error) {
	return s.load(ctx, actor, id)
}

// Update applies the subset of the patch the actor's role may change.
// Fields outside that allow-list are dropped without error.
func (s *ReportService) Update(ctx context.Context, actor access.Actor, id uuid.UUID, req *dto.UpdateReportRequest) (*dto.ReportResponse, error) {
	var report models.Report
	if err := s.find(ctx, actor, id, &report); err != nil {
		return nil, err
	}

	changes := access.FilterPatch(actor.Role, req.Changes())
	updates := make(map[string]interface{}, len(changes)+2)

	for field, value := range changes {
		switch field {
		case access.FieldLocation:
			in := value.(dto.LocationInput)
			v, err := s.locator.ValidateLocation(ctx, *in.Lat, *in.Lng)
			if err != nil {
				return nil, err
			}
			updates["location_lat"] = *in.Lat
			updates["location_lng"] = *in.Lng
			updates["location_formatted_address"] = v.Address
			if _, explicit := changes[access.FieldAddress]; !explicit {
				updates["address"] = v.Address
			}
		case access.FieldAssignedTo:
			assignee := value.(uuid.UUID)
			if err := s.checkAssignee(ctx, assignee); err != nil {
				return nil, err
			}
			updates[string(field)] = assignee
		default:
			updates[string(field)] = value
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&report).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update report: %w", err)
		}
		slog.Info("report updated", "report_id", id.String(), "user_id", actor.ID.String(),
			"fields", len(updates))
	}

	return s.load(ctx, actor, id)
}

// Delete soft-deletes a report visible to the actor. Evidence rows are kept.
func (s *ReportService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	var report models.Report
	if err := s.find(ctx, actor, id, &report); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&report).Error; err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	slog.Info("report deleted", "report_id", id.String(), "user_id", actor.ID.String())
	return nil
}

// Statistics counts visible reports in total, per incident type and per status.
func (s *ReportService) Statistics(ctx context.Context, actor access.Actor) (*dto.StatisticsResponse, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Report{}).Scopes(access.VisibleTo(actor))
	}

	stats := dto.StatisticsResponse{
		ByIncidentType: []dto.IncidentTypeCount{},
		ByStatus:       []dto.StatusCount{},
	}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}
	if err := base().Select("incident_type, COUNT(*) AS count").
		Group("incident_type").Order("incident_type").
		Scan(&stats.ByIncidentType).Error; err != nil {
		return nil, fmt.Errorf("failed to group by incident type: %w", err)
	}
	if err := base().Select("status, COUNT(*) AS count").
		Group("status").Order("status").
		Scan(&stats.ByStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group by status: %w", err)
	}
	return &stats, nil
}

// resolve picks coordinates over a free-text address when both are given.
func (s *ReportService) resolve(ctx context.Context, point *dto.LocationInput, address string) (*models.Location, error) {
	if point != nil && point.Lat != nil && point.Lng != nil {
		v, err := s.locator.ValidateLocation(ctx, *point.Lat, *point.Lng)
		if err != nil {
			return nil, err
		}
		return &models.Location{Lat: *point.Lat, Lng: *point.Lng, FormattedAddress: v.Address}, nil
	}

	if strings.TrimSpace(address) == "" {
		return nil, ErrMissingLocation
	}
	return s.locator.Geocode(ctx, address)
}

func (s *ReportService) checkAssignee(ctx context.Context, id uuid.UUID) error {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("role IN ? AND is_active = ?", []models.Role{models.RolePolice, models.RoleAdmin}, true).
		First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidAssignee
	}
	return err
}

func (s *ReportService) find(ctx context.Context, actor access.Actor, id uuid.UUID, out *models.Report) error {
	err := s.db.WithContext(ctx).Scopes(access.VisibleTo(actor)).First(out, "reports.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}
	return nil
}

func (s *ReportService) load(ctx context.Context, actor access.Actor, id uuid.UUID) (*dto.ReportResponse, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Scopes(access.VisibleTo(actor)).
		Preload("Evidences", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Creator").
		First(&report, "reports.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	resp := dto.NewReportResponse(&report)
	return &resp, nil
}
