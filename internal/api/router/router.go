package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/clinics"
	"github.com/clinicdesk/platform/internal/http/handlers"
	httpmiddleware "github.com/clinicdesk/platform/internal/http/middleware"
	"github.com/clinicdesk/platform/internal/schedule"
	"github.com/clinicdesk/platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ScheduleHandler     *schedule.Handler
	ClinicsHandler      *clinics.Handler
	AppointmentsHandler *appointments.Handler
	AdminAppointments   *handlers.AdminAppointmentsHandler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Patient-facing booking surface.
	if cfg.ScheduleHandler != nil {
		r.Get("/slots", cfg.ScheduleHandler.Slots)
	}
	if cfg.ClinicsHandler != nil {
		r.Get("/clinics", cfg.ClinicsHandler.List)
	}
	if cfg.AppointmentsHandler != nil {
		r.Post("/bookings", cfg.AppointmentsHandler.CreateBooking)
		r.Route("/appointments/{id}", func(r chi.Router) {
			r.Post("/cancel", cfg.AppointmentsHandler.Cancel)
			r.Post("/complete", cfg.AppointmentsHandler.Complete)
		})
	}

	// Back-office surface behind JWT auth.
	if cfg.AdminAppointments != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AdminAppointments.List)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
