package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oneroomhq/oneroom-backend/internal/dispatch"
	"github.com/oneroomhq/oneroom-backend/internal/events"
	"github.com/oneroomhq/oneroom-backend/internal/notiflog"
	"github.com/oneroomhq/oneroom-backend/internal/resolve"
	"github.com/oneroomhq/oneroom-backend/internal/rooms"
	"github.com/oneroomhq/oneroom-backend/internal/users"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/db"
	"github.com/oneroomhq/oneroom-backend/pkg/fcm"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"github.com/oneroomhq/oneroom-backend/pkg/metrics"
	"github.com/oneroomhq/oneroom-backend/pkg/migrate"
	"github.com/oneroomhq/oneroom-backend/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	fcmClient, err := fcm.NewClient(context.Background(), cfg.GCP, logg)
	requireResource(ctx, logg, "fcm", err)

	subscription := pubsubClient.RoomEventsSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "room events subscription", errors.New("subscription not configured"))
	}

	roomRepo := rooms.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	resolver, err := resolve.NewResolver(resolve.ResolverParams{
		Rooms:  roomRepo,
		Users:  userRepo,
		Logger: logg,
	})
	requireResource(ctx, logg, "recipient resolver", err)

	dispatcher, err := dispatch.NewDispatcher(dispatch.DispatcherParams{
		FCM:              fcmClient,
		Tokens:           userRepo,
		Log:              notiflog.NewRepository(dbClient.DB()),
		Logger:           logg,
		Metrics:          metrics.NewDispatchMetrics(prometheus.DefaultRegisterer),
		AndroidChannelID: cfg.FCM.AndroidChannelID,
		BroadcastTopic:   cfg.FCM.BroadcastTopic,
	})
	requireResource(ctx, logg, "dispatcher", err)

	router, err := events.NewRouter(events.RouterParams{
		Rooms:      roomRepo,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	requireResource(ctx, logg, "event router", err)

	consumer, err := events.NewConsumer(subscription, router, logg)
	requireResource(ctx, logg, "event consumer", err)

	service, err := NewService(ServiceParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		PubSub:   pubsubClient,
		Consumer: consumer,
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker failed", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
