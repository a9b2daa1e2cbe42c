package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paylinkhq/paylink-backend/api/controllers"
	"github.com/paylinkhq/paylink-backend/api/routes"
	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
	"github.com/paylinkhq/paylink-backend/pkg/migrate"
	"github.com/paylinkhq/paylink-backend/pkg/pubsub"
	"github.com/paylinkhq/paylink-backend/pkg/redis"
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

	healthDeps := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var notifier reconciliation.Notifier
	var pubsubClient *pubsub.Client
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		healthDeps["pubsub"] = pubsubClient

		notifier, err = reconciliation.NewPubSubNotifier(pubsubClient.AlertsPublisher(), logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create alert notifier", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcp project not configured; alert fan-out disabled")
	}

	reconMetrics := metrics.NewReconciliationMetrics(prometheus.DefaultRegisterer)
	reconService, err := reconciliation.NewService(reconciliation.ServiceParams{
		Logger:   logg,
		Repo:     reconciliation.NewRepository(dbClient.DB()),
		Sources:  reconciliation.NewSourceRepository(dbClient.DB()),
		Policy:   reconciliation.PolicyFromConfig(cfg.Reconciliation),
		Metrics:  reconMetrics,
		Notifier: notifier,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:                cfg,
			Logger:                logg,
			ReconciliationService: reconService,
			HealthDeps:            healthDeps,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
