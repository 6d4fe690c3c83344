package models

import (
	"time"

	"github.com/google/uuid"
)

// PushToken is one registered FCM delivery address. A user may hold zero or
// many; the client registers and prunes them.
type PushToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"type:text;not null;uniqueIndex"`
	Platform  *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
