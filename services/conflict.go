// services/conflict.go
package services

import (
	"time"

	"salonbook-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConflictService checks a requested time range against existing
// appointments that still hold the employee's time.
type ConflictService struct {
	db *gorm.DB
}

func NewConflictService(db *gorm.DB) *ConflictService {
	return &ConflictService{db: db}
}

// HasConflict reports whether any blocking appointment for the employee
// overlaps [start, end). Intervals are half-open, so appointments that merely
// touch at an endpoint do not conflict. Pass excludeID to ignore one
// appointment, e.g. the one being rescheduled.
func (s *ConflictService) HasConflict(employeeID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	q := s.db.Model(&models.Appointment{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", models.BlockingStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
