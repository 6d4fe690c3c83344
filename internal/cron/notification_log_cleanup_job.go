package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"gorm.io/gorm"
)

const notificationLogRetentionDays = 30

// txRunner abstracts the transactional database surface jobs depend on.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notificationLogCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type NotificationLogCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationLogCleanupRepo
	Retention  int
}

// NewNotificationLogCleanupJob builds the job that prunes old dispatch log rows.
func NewNotificationLogCleanupJob(params NotificationLogCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notification log repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationLogRetentionDays
	}
	return &notificationLogCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationLogCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      notificationLogCleanupRepo
	retention int
	now       func() time.Time
}

func (j *notificationLogCleanupJob) Name() string { return "notification-log-cleanup" }

func (j *notificationLogCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("notification log cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification log cleanup complete")
	return nil
}
