package access

import "gorm.io/gorm"

// VisibleTo restricts report queries to what the actor may see. Citizens, and
// any role the system does not recognise, only see their own reports.
func VisibleTo(actor Actor) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsStaff() {
			return db
		}
		return db.Where("reports.created_by = ?", actor.ID)
	}
}
