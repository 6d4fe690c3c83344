package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes read access to user preferences and push tokens. Both
// collections are written by the client application; this service only reads.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Preferences loads a user's notification settings. Returns (nil, nil) when
// the user never saved any; callers must treat that as fully enabled.
func (r *Repository) Preferences(ctx context.Context, userID uuid.UUID) (*models.UserPreference, error) {
	var prefs models.UserPreference
	if err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// Tokens returns the user's registered delivery addresses, oldest first.
func (r *Repository) Tokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var rows []models.PushToken
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Token != "" {
			tokens = append(tokens, row.Token)
		}
	}
	return tokens, nil
}

// TokensForUsers flattens the token sets of all listed users into one
// sequence, grouped per user in the order given.
func (r *Repository) TokensForUsers(ctx context.Context, userIDs []uuid.UUID) ([]string, error) {
	tokens := []string{}
	for _, userID := range userIDs {
		userTokens, err := r.Tokens(ctx, userID)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, userTokens...)
	}
	return tokens, nil
}
