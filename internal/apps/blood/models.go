package blood

import (
	"time"

	"github.com/covaid/covaid-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing is a person's blood donation offer or request.
type Listing struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MobileNumber            string     `gorm:"size:20;not null;index" json:"mobileNumber"`
	IsReceiver              bool       `gorm:"not null" json:"bloodReceiver"`
	BloodType               BloodType  `gorm:"not null;index" json:"bloodType"`
	HospitalName            string     `gorm:"size:255" json:"hospitalName"`
	PickUpDrop              bool       `gorm:"not null" json:"pickUpDrop"`
	DocumentURI             string     `gorm:"type:text" json:"documentURI"`
	RecoveryDate            *time.Time `gorm:"type:date" json:"recoveryDate"`
	DistanceWillingToTravel int        `json:"distanceWillingToTravel"`
	DetailsAvailable        bool       `gorm:"not null" json:"detailsAvailable"`
	Latitude                float64    `gorm:"type:decimal(10,8);not null;index" json:"latitude"`
	Longitude               float64    `gorm:"type:decimal(11,8);not null" json:"longitude"`
	IsActive                bool       `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "blood_listings"
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Mapping stores blood matches in their own table.
type Mapping struct {
	models.Mapping
}

func (Mapping) TableName() string {
	return "blood_mappings"
}

// --- DTOs ---

type EntryRequest struct {
	MobileNumber            string   `json:"mobileNumber" validate:"required,numeric,min=6,max=15"`
	BloodReceiver           bool     `json:"bloodReceiver"`
	BloodType               *int     `json:"bloodType" validate:"required,min=0,max=7"`
	HospitalName            string   `json:"hospitalName" validate:"max=255"`
	PickUpDrop              bool     `json:"pickUpDrop"`
	DocumentURI             string   `json:"documentURI" validate:"omitempty,max=2048"`
	RecoveryDate            string   `json:"recoveryDate"`
	DistanceWillingToTravel int      `json:"distanceWillingToTravel" validate:"min=0"`
	DetailsAvailable        bool     `json:"detailsAvailable"`
	Latitude                *float64 `json:"latitude" validate:"required,latitude"`
	Longitude               *float64 `json:"longitude" validate:"required,longitude"`
}
