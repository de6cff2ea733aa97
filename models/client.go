package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client wraps a User identity for booking purposes. Clients are created
// lazily on first booking, so guests and walk-ins never need an account
// up front.
type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	User  User `gorm:"foreignKey:UserID"`
	Notes string

	Appointments []Appointment `gorm:"foreignKey:ClientID"`

	gorm.Model
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
