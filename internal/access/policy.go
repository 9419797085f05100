package access

import "github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"

// Field names a report attribute that an update may touch.
type Field string

const (
	FieldIncidentType Field = "incident_type"
	FieldOccurredAt   Field = "occurred_at"
	FieldLocation     Field = "location"
	FieldAddress      Field = "address"
	FieldDescription  Field = "description"
	FieldStatus       Field = "status"
	FieldPriority     Field = "priority"
	FieldAssignedTo   Field = "assigned_to"
)

var ownerFields = []Field{
	FieldIncidentType,
	FieldOccurredAt,
	FieldLocation,
	FieldAddress,
	FieldDescription,
}

var triageFields = []Field{
	FieldStatus,
	FieldPriority,
	FieldAssignedTo,
}

// PatchableFields is the allow-list of report fields a role may change.
func PatchableFields(role models.Role) map[Field]bool {
	allowed := make(map[Field]bool, len(ownerFields)+len(triageFields))
	for _, f := range ownerFields {
		allowed[f] = true
	}
	if role.IsStaff() {
		for _, f := range triageFields {
			allowed[f] = true
		}
	}
	return allowed
}

// FilterPatch drops every field the role may not change. Dropped fields are
// ignored silently; the caller never sees an error for them.
func FilterPatch(role models.Role, patch map[Field]interface{}) map[Field]interface{} {
	allowed := PatchableFields(role)
	out := make(map[Field]interface{}, len(patch))
	for f, v := range patch {
		if allowed[f] {
			out[f] = v
		}
	}
	return out
}
