package oxygen

import (
	"time"

	"github.com/covaid/covaid-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing is a person's oxygen supply offer or request.
type Listing struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MobileNumber     string    `gorm:"size:20;not null;index" json:"mobileNumber"`
	IsReceiver       bool      `gorm:"not null" json:"oxygenReceiver"`
	HospitalName     string    `gorm:"size:255" json:"hospitalName"`
	FullGear         bool      `gorm:"not null" json:"fullGear"`
	CanDeliver       bool      `gorm:"not null" json:"canDeliver"`
	DetailsAvailable bool      `gorm:"not null" json:"detailsAvailable"`
	Latitude         float64   `gorm:"type:decimal(10,8);not null;index" json:"latitude"`
	Longitude        float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	IsActive         bool      `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "oxygen_listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Mapping stores oxygen matches in their own table.
type Mapping struct {
	models.Mapping
}

func (Mapping) TableName() string {
	return "oxygen_mappings"
}

// --- DTOs ---

type EntryRequest struct {
	MobileNumber     string   `json:"mobileNumber" validate:"required,numeric,min=6,max=15"`
	OxygenReceiver   bool     `json:"oxygenReceiver"`
	HospitalName     string   `json:"hospitalName" validate:"max=255"`
	FullGear         bool     `json:"fullGear"`
	CanDeliver       bool     `json:"canDeliver"`
	DetailsAvailable bool     `json:"oxygenDetailsAvailable"`
	Latitude         *float64 `json:"latitude" validate:"required,latitude"`
	Longitude        *float64 `json:"longitude" validate:"required,longitude"`
}
