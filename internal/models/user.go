package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. The mobile number is the login identifier.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	Location     string    `gorm:"size:255" json:"location"`
	Gender       string    `gorm:"size:20" json:"gender"`
	Age          int       `json:"age"`
	MobileNumber string    `gorm:"size:20;not null;uniqueIndex" json:"mobileNumber"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;default:'user'" json:"-"`
	Disabled     bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
