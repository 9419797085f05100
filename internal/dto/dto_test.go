package dto

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidateCreateReport(t *testing.T) {
	valid := CreateReportRequest{
		IncidentType: "THEFT",
		OccurredAt:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Location:     &LocationInput{Lat: ptr(-27.37), Lng: ptr(-55.90)},
		Description:  "bike stolen",
	}
	require.NoError(t, Validate(&valid))

	noType := valid
	noType.IncidentType = "ARSON"
	err := Validate(&noType)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "incident_type")

	badLat := valid
	badLat.Location = &LocationInput{Lat: ptr(91.0), Lng: ptr(0.0)}
	assert.ErrorIs(t, Validate(&badLat), ErrInvalidInput)

	zeroPoint := valid
	zeroPoint.Location = &LocationInput{Lat: ptr(0.0), Lng: ptr(0.0)}
	assert.NoError(t, Validate(&zeroPoint), "0,0 is syntactically valid")

	noDesc := valid
	noDesc.Description = ""
	assert.ErrorIs(t, Validate(&noDesc), ErrInvalidInput)

	badEvidence := valid
	badEvidence.Evidences = []EvidenceInput{{Kind: "PDF", StorageURL: "x", OriginalFilename: "x"}}
	assert.ErrorIs(t, Validate(&badEvidence), ErrInvalidInput)
}

func TestValidateReportFilter(t *testing.T) {
	assert.NoError(t, Validate(&ReportFilter{}))
	assert.NoError(t, Validate(&ReportFilter{Page: ptr(2), Limit: ptr(100)}))
	assert.Error(t, Validate(&ReportFilter{Page: ptr(0)}))
	assert.Error(t, Validate(&ReportFilter{Limit: ptr(101)}))
	assert.Error(t, Validate(&ReportFilter{OccurredFrom: "yesterday"}))
	assert.NoError(t, Validate(&ReportFilter{OccurredFrom: "2024-01-01T00:00:00Z"}))
}

func TestReportFilterDefaultsAndRange(t *testing.T) {
	f := ReportFilter{OccurredFrom: "2024-01-01T00:00:00Z"}
	assert.Equal(t, 1, f.PageOrDefault())
	assert.Equal(t, 10, f.LimitOrDefault())

	_, _, ok := f.DateRange()
	assert.False(t, ok, "one bound alone is ignored")

	f.OccurredTo = "2024-01-31T23:59:59Z"
	from, to, ok := f.DateRange()
	require.True(t, ok)
	assert.True(t, from.Before(to))
}

func TestUpdateChangesSkipsEmptyValues(t *testing.T) {
	assignee := uuid.New()
	req := UpdateReportRequest{
		Description: ptr(""),
		Address:     ptr("Av. Mitre 1200"),
		Status:      ptr("RESOLVED"),
		AssignedTo:  ptr(assignee.String()),
	}

	got := req.Changes()

	assert.Equal(t, map[access.Field]interface{}{
		access.FieldAddress:    "Av. Mitre 1200",
		access.FieldStatus:     models.StatusResolved,
		access.FieldAssignedTo: assignee,
	}, got)
}

func TestNewReportResponseFillsEmptyCollections(t *testing.T) {
	r := models.Report{ID: uuid.New(), CreatedBy: uuid.New()}
	resp := NewReportResponse(&r)

	assert.NotNil(t, resp.NearbyStations)
	assert.NotNil(t, resp.Evidences)
	assert.Nil(t, resp.Creator)

	r.Creator = models.User{ID: r.CreatedBy, Name: "Ana", Surname: "Gómez", Email: "ana@example.com"}
	resp = NewReportResponse(&r)
	require.NotNil(t, resp.Creator)
	assert.Equal(t, "Ana", resp.Creator.Name)
}
