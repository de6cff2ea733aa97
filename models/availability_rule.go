package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityRule describes when an employee can be booked. A weekly rule
// applies to every date falling on DayOfWeek. An exception rule applies to
// exactly ExceptionDate and fully replaces the weekly rule for that date.
//
// StartTime and EndTime are 24h wall-clock strings ("HH:MM"). A day off is
// stored as an exception with StartTime == EndTime == "00:00".
type AvailabilityRule struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null"`

	DayOfWeek int    `gorm:"not null"` // 0 = Sunday .. 6 = Saturday
	StartTime string `gorm:"type:varchar(5);not null"`
	EndTime   string `gorm:"type:varchar(5);not null"`

	IsException   bool `gorm:"default:false"`
	ExceptionDate *time.Time

	gorm.Model
}

func (r *AvailabilityRule) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
