package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskInstance is one scheduled occurrence of a recurring room task.
type TaskInstance struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	TaskID        *uuid.UUID `gorm:"type:uuid"`
	Title         string     `gorm:"type:text;not null"`
	AssignedTo    *uuid.UUID `gorm:"column:assigned_to;type:uuid"`
	ScheduledDate time.Time  `gorm:"column:scheduled_date;type:timestamptz;not null;index"`
	CompletedAt   *time.Time `gorm:"column:completed_at;type:timestamptz"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
