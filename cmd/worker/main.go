package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/internal/consumers/orderpaid"
	"github.com/printlink/printlink-backend/internal/orders"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/pkg/config"
	"github.com/printlink/printlink-backend/pkg/db"
	"github.com/printlink/printlink-backend/pkg/instance"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/metrics"
	"github.com/printlink/printlink-backend/pkg/pubsub"
	"github.com/printlink/printlink-backend/pkg/realtime"
	"github.com/printlink/printlink-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.OrdersSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "orders subscription", errors.New("subscription not configured"))
	}

	hub := realtime.NewHub(cfg.Realtime.SubscriberBuffer, logg)

	var broadcaster realtime.Broadcaster = hub
	if cfg.Realtime.BackplaneEnabled {
		backplane := realtime.NewBackplane(hub, redisClient.Raw(), cfg.Realtime.BackplaneChannel, logg)
		backplane.Start(ctx)
		defer func() {
			if err := backplane.Close(); err != nil {
				logg.Error(ctx, "failed to close realtime backplane", err)
			}
		}()
		broadcaster = backplane
	}

	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)

	ordersRepo := orders.NewRepository(dbClient.DB())
	centersRepo := printcenters.NewRepository(dbClient.DB())
	assignmentsRepo := assignments.NewRepository(dbClient.DB())

	matcher, err := assignments.NewMatcher(
		assignmentsRepo, ordersRepo, centersRepo,
		dbClient, broadcaster, fulfillmentMetrics, logg, cfg.Assignment,
	)
	requireResource(ctx, logg, "assignment matcher", err)

	service, err := orderpaid.NewService(subscription, matcher, redisClient, logg)
	requireResource(ctx, logg, "order-paid consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(runCtx, "order-paid worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "order-paid worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
