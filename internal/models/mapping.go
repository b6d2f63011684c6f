package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mapping is a proposed (or accepted) donor -> receiver match inside one subsystem.
// Each subsystem stores its mappings in its own table; see the per-app Mapping types.
type Mapping struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Donor      string    `gorm:"size:20;not null;index:,unique,composite:pair" json:"donor"`
	Receiver   string    `gorm:"size:20;not null;index:,unique,composite:pair;index" json:"receiver"`
	Distance   float64   `gorm:"not null" json:"distance"`
	IsAccepted bool      `gorm:"not null;default:false" json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (m *Mapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
