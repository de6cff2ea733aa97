package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending    = "PENDING"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

// BlockingStatuses are the statuses that hold an employee's time. Completed,
// cancelled and no-show appointments are historical and never conflict.
var BlockingStatuses = []string{StatusPending, StatusConfirmed, StatusInProgress}

type Appointment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID   uuid.UUID `gorm:"type:uuid;index;not null"`
	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null"`

	Client   Client   `gorm:"foreignKey:ClientID"`
	Employee Employee `gorm:"foreignKey:EmployeeID"`

	StartTime time.Time `gorm:"index;not null"`
	EndTime   time.Time `gorm:"not null"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Notes  string

	// Informational only: stored as supplied, never used to convert times.
	ClientTimezone string `gorm:"type:varchar(64);default:'UTC'"`
	BookingSource  string `gorm:"type:varchar(20);default:'WEB'"`

	Items []AppointmentService `gorm:"foreignKey:AppointmentID"`

	gorm.Model
}

// AppointmentService is a line item snapshot. Price and duration are captured
// at booking time so later edits to the service never alter history.
type AppointmentService struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID     uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceName     string  `gorm:"not null"`
	Price           float64 `gorm:"type:decimal(10,2);not null"`
	DurationMinutes int     `gorm:"not null"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (i *AppointmentService) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
