package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type LocationInput struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// EvidenceInput describes media hosted elsewhere and attached at creation.
type EvidenceInput struct {
	Kind             string `json:"kind" validate:"required,oneof=IMAGE VIDEO AUDIO OTHER"`
	StorageURL       string `json:"storage_url" validate:"required,max=500"`
	OriginalFilename string `json:"original_filename" validate:"required,max=255"`
	SizeBytes        int64  `json:"size_bytes" validate:"gte=0"`
	Format           string `json:"format" validate:"max=20"`
}

type CreateReportRequest struct {
	IncidentType string          `json:"incident_type" validate:"required,oneof=THEFT VANDALISM ASSAULT HARASSMENT OTHER"`
	OccurredAt   time.Time       `json:"occurred_at" validate:"required"`
	Location     *LocationInput  `json:"location"`
	Address      string          `json:"address" validate:"max=500"`
	Description  string          `json:"description" validate:"required"`
	Status       string          `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED CLOSED"`
	Priority     string          `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Evidences    []EvidenceInput `json:"evidences" validate:"omitempty,dive"`
}

// UpdateReportRequest is a partial update. Absent and empty values leave the
// stored field untouched.
type UpdateReportRequest struct {
	IncidentType *string        `json:"incident_type" validate:"omitempty,oneof=THEFT VANDALISM ASSAULT HARASSMENT OTHER"`
	OccurredAt   *time.Time     `json:"occurred_at"`
	Location     *LocationInput `json:"location"`
	Address      *string        `json:"address" validate:"omitempty,max=500"`
	Description  *string        `json:"description"`
	Status       *string        `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED CLOSED"`
	Priority     *string        `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	AssignedTo   *string        `json:"assigned_to" validate:"omitempty,uuid"`
}

// Changes lists the fields present in the request keyed by report field.
// Call Validate first; AssignedTo is assumed to be a well-formed UUID.
func (r *UpdateReportRequest) Changes() map[access.Field]interface{} {
	out := make(map[access.Field]interface{})
	if r.IncidentType != nil && *r.IncidentType != "" {
		out[access.FieldIncidentType] = models.IncidentType(*r.IncidentType)
	}
	if r.OccurredAt != nil && !r.OccurredAt.IsZero() {
		out[access.FieldOccurredAt] = *r.OccurredAt
	}
	if r.Location != nil {
		out[access.FieldLocation] = *r.Location
	}
	if r.Address != nil && *r.Address != "" {
		out[access.FieldAddress] = *r.Address
	}
	if r.Description != nil && *r.Description != "" {
		out[access.FieldDescription] = *r.Description
	}
	if r.Status != nil && *r.Status != "" {
		out[access.FieldStatus] = models.ReportStatus(*r.Status)
	}
	if r.Priority != nil && *r.Priority != "" {
		out[access.FieldPriority] = models.Priority(*r.Priority)
	}
	if r.AssignedTo != nil && *r.AssignedTo != "" {
		if id, err := uuid.Parse(*r.AssignedTo); err == nil {
			out[access.FieldAssignedTo] = id
		}
	}
	return out
}

// ReportFilter carries list query parameters. Dates are RFC3339 and only
// applied when both bounds are present.
type ReportFilter struct {
	IncidentType string `query:"incidentType" validate:"omitempty,oneof=THEFT VANDALISM ASSAULT HARASSMENT OTHER"`
	Status       string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS RESOLVED CLOSED"`
	Priority     string `query:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	OccurredFrom string `query:"occurredFrom" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	OccurredTo   string `query:"occurredTo" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Page         *int   `query:"page" validate:"omitnil,gte=1"`
	Limit        *int   `query:"limit" validate:"omitnil,gte=1,lte=100"`
}

func (f *ReportFilter) PageOrDefault() int {
	if f.Page == nil {
		return DefaultPage
	}
	return *f.Page
}

func (f *ReportFilter) LimitOrDefault() int {
	if f.Limit == nil {
		return DefaultLimit
	}
	return *f.Limit
}

// DateRange returns the inclusive occurred_at bounds, ok=false unless both
// bounds parse.
func (f *ReportFilter) DateRange() (from, to time.Time, ok bool) {
	if f.OccurredFrom == "" || f.OccurredTo == "" {
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(time.RFC3339, f.OccurredFrom)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(time.RFC3339, f.OccurredTo)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

type CreatorSummary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Email   string    `json:"email"`
}

type ReportResponse struct {
	ID             uuid.UUID           `json:"id"`
	IncidentType   models.IncidentType `json:"incident_type"`
	OccurredAt     time.Time           `json:"occurred_at"`
	Location       models.Location     `json:"location"`
	Address        string              `json:"address"`
	Description    string              `json:"description"`
	Status         models.ReportStatus `json:"status"`
	Priority       models.Priority     `json:"priority"`
	AssignedTo     *uuid.UUID          `json:"assigned_to"`
	NearbyStations []models.StationRef `json:"nearby_stations"`
	CreatedBy      uuid.UUID           `json:"created_by"`
	Creator        *CreatorSummary     `json:"creator"`
	Evidences      []models.Evidence   `json:"evidences"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func NewReportResponse(r *models.Report) ReportResponse {
	resp := ReportResponse{
		ID:             r.ID,
		IncidentType:   r.IncidentType,
		OccurredAt:     r.OccurredAt,
		Location:       r.Location,
		Address:        r.Address,
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		AssignedTo:     r.AssignedTo,
		NearbyStations: []models.StationRef(r.NearbyStations),
		CreatedBy:      r.CreatedBy,
		Evidences:      r.Evidences,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if resp.NearbyStations == nil {
		resp.NearbyStations = []models.StationRef{}
	}
	if resp.Evidences == nil {
		resp.Evidences = []models.Evidence{}
	}
	if r.Creator.ID != uuid.Nil {
		resp.Creator = &CreatorSummary{
			ID:      r.Creator.ID,
			Name:    r.Creator.Name,
			Surname: r.Creator.Surname,
			Email:   r.Creator.Email,
		}
	}
	return resp
}

type ReportListResponse struct {
	Items     []ReportResponse `json:"items"`
	Total     int64            `json:"total"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
	PageCount int              `json:"page_count"`
}

type IncidentTypeCount struct {
	IncidentType models.IncidentType `json:"incident_type"`
	Count        int64               `json:"count"`
}

type StatusCount struct {
	Status models.ReportStatus `json:"status"`
	Count  int64               `json:"count"`
}

type StatisticsResponse struct {
	Total          int64               `json:"total"`
	ByIncidentType []IncidentTypeCount `json:"by_incident_type"`
	ByStatus       []StatusCount       `json:"by_status"`
}

type LocationValidationResponse struct {
	IsValid bool   `json:"is_valid"`
	Address string `json:"address"`
}
