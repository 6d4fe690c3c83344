package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oneroomhq/oneroom-backend/api/routes"
	"github.com/oneroomhq/oneroom-backend/internal/dispatch"
	"github.com/oneroomhq/oneroom-backend/internal/notiflog"
	"github.com/oneroomhq/oneroom-backend/internal/users"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/db"
	"github.com/oneroomhq/oneroom-backend/pkg/fcm"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
	"github.com/oneroomhq/oneroom-backend/pkg/metrics"
	"github.com/oneroomhq/oneroom-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	fcmClient, err := fcm.NewClient(context.Background(), cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap fcm", err)
		os.Exit(1)
	}

	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)
	dispatcher, err := dispatch.NewDispatcher(dispatch.DispatcherParams{
		FCM:              fcmClient,
		Tokens:           users.NewRepository(dbClient.DB()),
		Log:              notiflog.NewRepository(dbClient.DB()),
		Logger:           logg,
		Metrics:          dispatchMetrics,
		AndroidChannelID: cfg.FCM.AndroidChannelID,
		BroadcastTopic:   cfg.FCM.BroadcastTopic,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, dispatcher, promhttp.Handler()),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
