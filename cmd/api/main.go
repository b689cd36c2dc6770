package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/printlink/printlink-backend/api/routes"
	"github.com/printlink/printlink-backend/internal/agents"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/internal/locations"
	"github.com/printlink/printlink-backend/internal/orders"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/internal/tracking"
	"github.com/printlink/printlink-backend/pkg/auth/session"
	"github.com/printlink/printlink-backend/pkg/config"
	"github.com/printlink/printlink-backend/pkg/db"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/metrics"
	"github.com/printlink/printlink-backend/pkg/migrate"
	"github.com/printlink/printlink-backend/pkg/realtime"
	"github.com/printlink/printlink-backend/pkg/redis"
	"github.com/printlink/printlink-backend/pkg/routing"
)

const shutdownGrace = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	hub := realtime.NewHub(cfg.Realtime.SubscriberBuffer, logg)

	var broadcaster realtime.Broadcaster = hub
	if cfg.Realtime.BackplaneEnabled {
		backplane := realtime.NewBackplane(hub, redisClient.Raw(), cfg.Realtime.BackplaneChannel, logg)
		backplane.Start(ctx)
		defer func() {
			if err := backplane.Close(); err != nil {
				logg.Error(ctx, "error closing realtime backplane", err)
			}
		}()
		broadcaster = backplane
	}

	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)

	routingClient := routing.NewClient(
		cfg.Routing.BaseURL,
		cfg.Routing.APIKey,
		routing.WithTimeout(cfg.Routing.Timeout),
		routing.WithFallbackSpeed(cfg.Routing.FallbackSpeedKMH),
		routing.WithLogger(logg),
		routing.WithMetrics(fulfillmentMetrics),
	)

	ordersRepo := orders.NewRepository(dbClient.DB())
	centersRepo := printcenters.NewRepository(dbClient.DB())
	agentsRepo := agents.NewRepository(dbClient.DB())
	assignmentsRepo := assignments.NewRepository(dbClient.DB())
	locationsRepo := locations.NewRepository(dbClient.DB())

	matcher, err := assignments.NewMatcher(
		assignmentsRepo, ordersRepo, centersRepo,
		dbClient, broadcaster, fulfillmentMetrics, logg, cfg.Assignment,
	)
	requireResource(ctx, logg, "assignment matcher", err)

	lifecycle, err := assignments.NewLifecycle(
		assignmentsRepo, ordersRepo, agentsRepo,
		dbClient, broadcaster, fulfillmentMetrics, logg,
	)
	requireResource(ctx, logg, "assignment lifecycle", err)

	locationsService, err := locations.NewService(locationsRepo, assignmentsRepo, broadcaster, logg)
	requireResource(ctx, logg, "locations service", err)

	centersService, err := printcenters.NewService(centersRepo)
	requireResource(ctx, logg, "print centers service", err)

	agentsService, err := agents.NewService(agentsRepo)
	requireResource(ctx, logg, "agents service", err)

	trackingService, err := tracking.NewService(
		ordersRepo, assignmentsRepo, centersRepo, agentsRepo, locationsRepo,
		routingClient, logg,
	)
	requireResource(ctx, logg, "tracking service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, sessionManager, hub,
			matcher, lifecycle, locationsService, trackingService,
			centersService, agentsService,
		),
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
