package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oneroomhq/oneroom-backend/pkg/enums"
)

// NotificationLog records one dispatch for audit and retention. Delivery is
// best effort; the log captures what was attempted, not what arrived.
type NotificationLog struct {
	ID         uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Category   enums.NotificationCategory `gorm:"type:text;not null"`
	RoomID     *uuid.UUID                 `gorm:"type:uuid"`
	Target     string                     `gorm:"type:text;not null"`
	Title      string                     `gorm:"type:text;not null"`
	Body       string                     `gorm:"type:text;not null"`
	Recipients int                        `gorm:"not null;default:0"`
	Tokens     int                        `gorm:"not null;default:0"`
	CreatedAt  time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
