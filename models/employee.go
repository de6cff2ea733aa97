package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	User     User   `gorm:"foreignKey:UserID"`
	Title    string `gorm:"default:'Stylist'"`
	IsActive bool   `gorm:"default:true"`

	Services          []Service          `gorm:"many2many:employee_services"`
	AvailabilityRules []AvailabilityRule `gorm:"foreignKey:EmployeeID"`
	Appointments      []Appointment      `gorm:"foreignKey:EmployeeID"`

	gorm.Model
}

func (e *Employee) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
