package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to scheduled task instances.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a tasks repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListScheduledBetween returns the room's task instances with
// start <= scheduled_date < end.
func (r *Repository) ListScheduledBetween(ctx context.Context, roomID uuid.UUID, start, end time.Time) ([]models.TaskInstance, error) {
	var instances []models.TaskInstance
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND scheduled_date >= ? AND scheduled_date < ?", roomID, start, end).
		Order("scheduled_date").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}
