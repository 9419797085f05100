package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvidenceKind string

const (
	EvidenceImage EvidenceKind = "IMAGE"
	EvidenceVideo EvidenceKind = "VIDEO"
	EvidenceAudio EvidenceKind = "AUDIO"
	EvidenceOther EvidenceKind = "OTHER"
)

// Evidence is media metadata attached to exactly one report. StorageKey names
// the blob in the configured store; rows created inline with a report may
// reference externally hosted media and carry no key.
type Evidence struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID         uuid.UUID    `gorm:"type:uuid;not null;index" json:"report_id"`
	Kind             EvidenceKind `gorm:"size:10;not null" json:"kind"`
	StorageURL       string       `gorm:"size:500;not null" json:"storage_url"`
	StorageKey       string       `gorm:"size:255" json:"-"`
	OriginalFilename string       `gorm:"size:255;not null" json:"original_filename"`
	SizeBytes        int64        `gorm:"not null" json:"size_bytes"`
	Format           string       `gorm:"size:20" json:"format"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (Evidence) TableName() string {
	return "evidences"
}

func (e *Evidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
