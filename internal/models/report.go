package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IncidentType string

const (
	IncidentTheft      IncidentType = "THEFT"
	IncidentVandalism  IncidentType = "VANDALISM"
	IncidentAssault    IncidentType = "ASSAULT"
	IncidentHarassment IncidentType = "HARASSMENT"
	IncidentOther      IncidentType = "OTHER"
)

type ReportStatus string

const (
	StatusPending    ReportStatus = "PENDING"
	StatusInProgress ReportStatus = "IN_PROGRESS"
	StatusResolved   ReportStatus = "RESOLVED"
	StatusClosed     ReportStatus = "CLOSED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Location is a resolved point with the address the geocoder attached to it.
type Location struct {
	Lat              float64 `gorm:"type:decimal(10,8);not null" json:"lat"`
	Lng              float64 `gorm:"type:decimal(11,8);not null" json:"lng"`
	FormattedAddress string  `gorm:"size:500;not null" json:"formatted_address"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StationRef is a police station near a report, captured at creation time.
type StationRef struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Location   GeoPoint `json:"location"`
	DistanceKm float64  `json:"distance_km"`
}

// Report is a citizen incident report ("denuncia"). Deletion is soft.
type Report struct {
	ID             uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	IncidentType   IncidentType                    `gorm:"size:20;not null;index" json:"incident_type"`
	OccurredAt     time.Time                       `gorm:"not null;index" json:"occurred_at"`
	Location       Location                        `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Address        string                          `gorm:"size:500;not null" json:"address"`
	Description    string                          `gorm:"type:text;not null" json:"description"`
	Status         ReportStatus                    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Priority       Priority                        `gorm:"size:20;not null;default:'MEDIUM'" json:"priority"`
	AssignedTo     *uuid.UUID                      `gorm:"type:uuid;index" json:"assigned_to"`
	NearbyStations datatypes.JSONSlice[StationRef] `json:"nearby_stations"`
	CreatedBy      uuid.UUID                       `gorm:"type:uuid;not null;index" json:"created_by"`
	Creator        User                            `gorm:"foreignKey:CreatedBy" json:"-"`
	Evidences      []Evidence                      `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"evidences"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt                  `gorm:"index" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.NearbyStations == nil {
		r.NearbyStations = datatypes.JSONSlice[StationRef]{}
	}
	return nil
}
