package matching

import (
	"fmt"
	"time"

	"github.com/covaid/covaid-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// saveMessage upserts the requester's latest note for the content type.
func saveMessage(tx *gorm.DB, mobile string, ct models.ContentType, text string) error {
	msg := models.Message{MobileNumber: mobile, ContentType: ct, Text: text}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mobile_number"}, {Name: "content_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"text": text, "updated_at": time.Now()}),
	}).Create(&msg).Error
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func latestMessages(db *gorm.DB, mobiles []string, ct models.ContentType) (map[string]string, error) {
	out := make(map[string]string, len(mobiles))
	if len(mobiles) == 0 {
		return out, nil
	}

	var msgs []models.Message
	if err := db.Where("mobile_number IN ? AND content_type = ?", mobiles, ct).
		Order("updated_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	for _, m := range msgs {
		out[m.MobileNumber] = m.Text
	}
	return out, nil
}

// LatestMessage returns the requester's current note for the content type.
func LatestMessage(db *gorm.DB, mobile string, ct models.ContentType) (string, bool, error) {
	msgs, err := latestMessages(db, []string{mobile}, ct)
	if err != nil {
		return "", false, err
	}
	text, ok := msgs[mobile]
	return text, ok, nil
}
