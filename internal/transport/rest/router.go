package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/fleet-management/internal"
	"github.com/frahmantamala/fleet-management/internal/auth"
	"github.com/frahmantamala/fleet-management/internal/core/identity"
	"github.com/frahmantamala/fleet-management/internal/dashboard"
	"github.com/frahmantamala/fleet-management/internal/feedback"
	"github.com/frahmantamala/fleet-management/internal/fuel"
	"github.com/frahmantamala/fleet-management/internal/maintenance"
	"github.com/frahmantamala/fleet-management/internal/notification"
	"github.com/frahmantamala/fleet-management/internal/report"
	"github.com/frahmantamala/fleet-management/internal/transport/middleware"
	"github.com/frahmantamala/fleet-management/internal/transport/swagger"
	"github.com/frahmantamala/fleet-management/internal/trip"
	"github.com/frahmantamala/fleet-management/internal/user"
	"github.com/frahmantamala/fleet-management/internal/vehicle"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups every HTTP handler the router mounts. A nil entry leaves
// its routes unregistered.
type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	User         *user.Handler
	Vehicle      *vehicle.Handler
	Trip         *trip.Handler
	Fuel         *fuel.Handler
	Maintenance  *maintenance.Handler
	Report       *report.Handler
	Notification *notification.Handler
	Feedback     *feedback.Handler
	Dashboard    *dashboard.Handler
}

func RegisterAllRoutes(router chi.Router, cfg internal.ServerConfig, policy identity.Authorizer, h Handlers, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, cfg.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	guard := func(resource, action string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(policy, resource, action)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.pingHandler)
			r.Get("/health/ready", h.Health.healthCheckHandler)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", h.Auth.Register)
				sr.Post("/login", h.Auth.Login)
			})
		}

		// Feedback may be submitted anonymously.
		if h.Feedback != nil {
			r.Post("/feedback", h.Feedback.SubmitFeedback)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
				pr.With(guard(identity.ResourceUser, identity.ActionList)).Get("/users", h.User.ListUsers)
				pr.With(guard(identity.ResourceUser, identity.ActionAssignRole)).Put("/users/{id}/role", h.User.AssignRole)
			}

			if h.Vehicle != nil {
				pr.Route("/vehicles", func(vr chi.Router) {
					vr.Get("/", h.Vehicle.ListVehicles)
					vr.Get("/{id}", h.Vehicle.GetVehicle)
					vr.Group(func(wr chi.Router) {
						wr.Use(guard(identity.ResourceVehicle, identity.ActionWrite))
						wr.Post("/", h.Vehicle.RegisterVehicle)
						wr.Put("/{id}", h.Vehicle.UpdateVehicle)
						wr.Delete("/{id}", h.Vehicle.DeleteVehicle)
					})
				})
			}

			if h.Trip != nil {
				pr.Route("/trips", func(tr chi.Router) {
					tr.Post("/", h.Trip.CreateTrip)
					tr.Get("/", h.Trip.ListTrips)
					tr.With(guard(identity.ResourceTrip, identity.ActionDecide)).Put("/{id}/decision", h.Trip.DecideTrip)
				})
			}

			if h.Fuel != nil {
				pr.Route("/fuel-logs", func(fr chi.Router) {
					fr.Post("/", h.Fuel.CreateFuelLog)
					fr.Get("/", h.Fuel.ListFuelLogs)
					fr.With(guard(identity.ResourceFuel, identity.ActionDecide)).Put("/{id}/decision", h.Fuel.DecideFuelLog)
					fr.Get("/vehicles/{vehicleId}/consumption", h.Fuel.VehicleConsumption)
				})
			}

			if h.Maintenance != nil {
				pr.Route("/maintenance", func(mr chi.Router) {
					mr.Post("/", h.Maintenance.CreateRequest)
					mr.Get("/", h.Maintenance.ListRequests)
					mr.With(guard(identity.ResourceMaintenance, identity.ActionDecide)).Put("/{id}/decision", h.Maintenance.DecideRequest)
					mr.Put("/{id}/report-fixed", h.Maintenance.ReportFixed)
					mr.With(guard(identity.ResourceMaintenance, identity.ActionComplete)).Put("/{id}/complete", h.Maintenance.MarkComplete)
				})
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Use(guard(identity.ResourceReport, identity.ActionRead))
					rr.Get("/drivers/{id}", h.Report.DriverReport)
					rr.Get("/vehicles/{id}", h.Report.VehicleReport)
				})
			}

			if h.Notification != nil {
				pr.Get("/notifications", h.Notification.ListNotifications)
				pr.Put("/notifications/{id}/read", h.Notification.MarkRead)
			}

			if h.Feedback != nil {
				pr.Group(func(fr chi.Router) {
					fr.Use(guard(identity.ResourceFeedback, identity.ActionList))
					fr.Get("/feedback", h.Feedback.ListFeedback)
				})
				pr.With(guard(identity.ResourceFeedback, identity.ActionRespond)).Put("/feedback/{id}/respond", h.Feedback.RespondFeedback)
			}

			if h.Dashboard != nil {
				pr.With(guard(identity.ResourceDashboard, identity.ActionRead)).Get("/dashboard", h.Dashboard.GetDashboard)
			}
		})
	})
}
