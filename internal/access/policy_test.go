package access

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPatchableFields(t *testing.T) {
	tests := []struct {
		role   models.Role
		field  Field
		expect bool
	}{
		{models.RoleCitizen, FieldDescription, true},
		{models.RoleCitizen, FieldLocation, true},
		{models.RoleCitizen, FieldStatus, false},
		{models.RoleCitizen, FieldPriority, false},
		{models.RoleCitizen, FieldAssignedTo, false},
		{models.RolePolice, FieldStatus, true},
		{models.RolePolice, FieldAssignedTo, true},
		{models.RoleAdmin, FieldPriority, true},
		{models.RoleAdmin, FieldOccurredAt, true},
		{models.Role("GUEST"), FieldStatus, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.expect, PatchableFields(tt.role)[tt.field])
		})
	}
}

func TestFilterPatchDropsTriageFieldsForCitizen(t *testing.T) {
	patch := map[Field]interface{}{
		FieldDescription: "updated",
		FieldStatus:      models.StatusResolved,
		FieldPriority:    models.PriorityLow,
		FieldAssignedTo:  "someone",
	}

	got := FilterPatch(models.RoleCitizen, patch)

	assert.Equal(t, map[Field]interface{}{FieldDescription: "updated"}, got)
	assert.Len(t, patch, 4, "input must not be mutated")
}

func TestFilterPatchKeepsEverythingForStaff(t *testing.T) {
	patch := map[Field]interface{}{
		FieldStatus:   models.StatusResolved,
		FieldPriority: models.PriorityLow,
	}

	assert.Equal(t, patch, FilterPatch(models.RolePolice, patch))
}
