package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printlink/printlink-backend/api/controllers"
	"github.com/printlink/printlink-backend/api/middleware"
	"github.com/printlink/printlink-backend/internal/agents"
	"github.com/printlink/printlink-backend/internal/assignments"
	"github.com/printlink/printlink-backend/internal/locations"
	"github.com/printlink/printlink-backend/internal/printcenters"
	"github.com/printlink/printlink-backend/internal/tracking"
	"github.com/printlink/printlink-backend/pkg/auth/session"
	"github.com/printlink/printlink-backend/pkg/config"
	"github.com/printlink/printlink-backend/pkg/db"
	"github.com/printlink/printlink-backend/pkg/enums"
	"github.com/printlink/printlink-backend/pkg/logger"
	"github.com/printlink/printlink-backend/pkg/realtime"
	"github.com/printlink/printlink-backend/pkg/redis"
)

const (
	publicTrackingRateLimit  = int64(60)
	publicTrackingRateWindow = time.Minute
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	hub *realtime.Hub,
	matcher assignments.Matcher,
	lifecycle assignments.Lifecycle,
	locationsService locations.Service,
	trackingService tracking.Service,
	centersService printcenters.Service,
	agentsService agents.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.With(middleware.RateLimit("tracking", publicTrackingRateLimit, publicTrackingRateWindow, redisClient, logg)).
			Get("/tracking/{orderRef}", controllers.TrackPublicOrder(trackingService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Get("/tracking/{orderRef}", controllers.TrackOrder(trackingService, logg))
		r.Get("/realtime/subscribe", controllers.RealtimeSubscribe(hub, logg))

		r.Route("/production-assignments", func(r chi.Router) {
			r.Get("/{assignmentID}", controllers.GetProductionAssignment(lifecycle, logg))
			r.Patch("/{assignmentID}/status", controllers.UpdateProductionStatus(lifecycle, logg))
			r.Get("/{assignmentID}/delivery-tracking", controllers.DeliveryTracking(trackingService, logg))
		})

		r.Route("/centers", func(r chi.Router) {
			r.Get("/", controllers.ListCenters(centersService, logg))
			r.Get("/{centerID}", controllers.GetCenter(centersService, logg))
			r.Get("/{centerID}/queue", controllers.ListCenterQueue(lifecycle, logg))
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Post("/", controllers.RegisterCenter(centersService, logg))
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Patch("/{centerID}/active", controllers.SetCenterActive(centersService, logg))
		})

		r.Route("/delivery-assignments", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Post("/", controllers.CreateDeliveryAssignment(lifecycle, logg))
			r.Patch("/{assignmentID}/status", controllers.UpdateDeliveryStatus(lifecycle, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Post("/", controllers.ReportLocation(locationsService, logg))
			r.Get("/", controllers.LocationHistory(locationsService, logg))
		})

		r.Route("/agents", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Get("/", controllers.ListAgents(agentsService, logg))
			r.With(middleware.RequireAnyRole(logg, string(enums.RoleAdmin), string(enums.RoleAgent))).
				Get("/{agentID}/locations/latest", controllers.LatestLocation(locationsService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).
				Post("/{orderID}/assign", controllers.AssignOrder(matcher, logg))
		})
	})

	return r
}
