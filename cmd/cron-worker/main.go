package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oneroomhq/oneroom-backend/internal/cron"
	"github.com/oneroomhq/oneroom-backend/internal/dispatch"
	"github.com/oneroomhq/oneroom-backend/internal/notiflog"
	"github.com/oneroomhq/oneroom-backend/internal/reminders"
	"github.com/oneroomhq/oneroom-backend/internal/rooms"
	"github.com/oneroomhq/oneroom-backend/internal/tasks"
	"github.com/oneroomhq/oneroom-backend/internal/users"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/db"
	"github.com/oneroomhq/oneroom-backend/pkg/fcm"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"github.com/oneroomhq/oneroom-backend/pkg/metrics"
	"github.com/oneroomhq/oneroom-backend/pkg/migrate"
	"github.com/oneroomhq/oneroom-backend/pkg/redis"
)

const lockKeyFormat = "oneroom:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	fcmClient, err := fcm.NewClient(context.Background(), cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap fcm", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	dispatcher, err := dispatch.NewDispatcher(dispatch.DispatcherParams{
		FCM:              fcmClient,
		Tokens:           userRepo,
		Log:              notiflog.NewRepository(dbClient.DB()),
		Logger:           logg,
		Metrics:          metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		AndroidChannelID: cfg.FCM.AndroidChannelID,
		BroadcastTopic:   cfg.FCM.BroadcastTopic,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	reminderService, err := reminders.NewService(reminders.ServiceParams{
		Rooms:      rooms.NewRepository(dbClient.DB()),
		Tasks:      tasks.NewRepository(dbClient.DB()),
		Users:      userRepo,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder service", err)
		os.Exit(1)
	}

	reminderJob, err := cron.NewDailyReminderJob(cron.DailyReminderJobParams{
		Logger:    logg,
		Reminders: reminderService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reminder job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationLogCleanupJob(cron.NotificationLogCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notiflog.NewRepository(dbClient.DB()),
		Retention:  cfg.Retention.NotificationLogDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(reminderJob, cleanupJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Reminders.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
