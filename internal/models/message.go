package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentType int

const (
	ContentBlood  ContentType = 0
	ContentOxygen ContentType = 1
)

// Message is the free-text note a requester attaches to a match request.
// Only the latest note per (mobile, content type) is kept.
type Message struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"-"`
	MobileNumber string      `gorm:"size:20;not null;uniqueIndex:idx_messages_mobile_type" json:"mobileNumber"`
	ContentType  ContentType `gorm:"not null;uniqueIndex:idx_messages_mobile_type" json:"contentType"`
	Text         string      `gorm:"type:text" json:"message"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
