package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

type reminderRunner interface {
	Run(ctx context.Context, now time.Time) error
}

type DailyReminderJobParams struct {
	Logger    *logger.Logger
	Reminders reminderRunner
}

// NewDailyReminderJob builds the job that sends the per-user task digests for
// the current UTC calendar day.
func NewDailyReminderJob(params DailyReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminder service required")
	}
	return &dailyReminderJob{
		logg:      params.Logger,
		reminders: params.Reminders,
		now:       time.Now,
	}, nil
}

type dailyReminderJob struct {
	logg      *logger.Logger
	reminders reminderRunner
	now       func() time.Time
}

func (j *dailyReminderJob) Name() string { return "daily-task-reminders" }

func (j *dailyReminderJob) Run(ctx context.Context) error {
	if err := j.reminders.Run(ctx, j.now()); err != nil {
		return fmt.Errorf("daily task reminders: %w", err)
	}
	return nil
}
