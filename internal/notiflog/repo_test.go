package notiflog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oneroomhq/oneroom-backend/pkg/db/models"
	"github.com/oneroomhq/oneroom-backend/pkg/enums"
)

func setupNotifLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	logs := `
CREATE TABLE IF NOT EXISTS notification_logs (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  room_id TEXT,
  target TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  recipients INTEGER NOT NULL DEFAULT 0,
  tokens INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(logs).Error)
	return db
}

func TestCreate(t *testing.T) {
	db := setupNotifLogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	roomID := uuid.New()
	entry := &models.NotificationLog{
		ID:         uuid.New(),
		Category:   enums.CategoryChat,
		RoomID:     &roomID,
		Target:     "tokens",
		Title:      "💬 New message in Flat 4B",
		Body:       "See you tonight",
		Recipients: 3,
		Tokens:     5,
	}
	require.NoError(t, repo.Create(ctx, entry))

	var got models.NotificationLog
	require.NoError(t, db.First(&got, "id = ?", entry.ID).Error)
	assert.Equal(t, enums.CategoryChat, got.Category)
	assert.Equal(t, 5, got.Tokens)
}

func TestDeleteOlderThan(t *testing.T) {
	db := setupNotifLogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	old := &models.NotificationLog{
		ID:       uuid.New(),
		Category: enums.CategoryTask,
		Target:   "tokens",
		Title:    "old",
		Body:     "old",
	}
	fresh := &models.NotificationLog{
		ID:       uuid.New(),
		Category: enums.CategoryTask,
		Target:   "tokens",
		Title:    "fresh",
		Body:     "fresh",
	}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Create(fresh).Error)
	require.NoError(t, db.Model(old).Update("created_at", now.AddDate(0, 0, -40)).Error)

	deleted, err := repo.DeleteOlderThan(ctx, nil, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining int64
	require.NoError(t, db.Model(&models.NotificationLog{}).
		Where("id IN ?", []uuid.UUID{old.ID, fresh.ID}).
		Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}
