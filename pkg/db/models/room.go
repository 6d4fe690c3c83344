package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/oneroomhq/oneroom-backend/pkg/db/types"
)

// Room mirrors the client-managed room document. This service only reads it.
type Room struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"type:text;not null"`
	MemberIDs dbtypes.UUIDArray `gorm:"type:uuid[];column:member_ids;not null;default:ARRAY[]::uuid[]"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
