package rooms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to the client-managed room directory.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a rooms repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads one room. Returns (nil, nil) when the room does not exist so
// callers can fail soft without inspecting driver errors.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// ListAll returns every room. Used by the daily reminder sweep.
func (r *Repository) ListAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
