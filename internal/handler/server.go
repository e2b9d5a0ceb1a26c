// Package handler implements the HTTP handlers for the Körjournal API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, export.go, etc.) but share the same Server struct so they
// can access its dependencies. The caller's identity arrives through the
// auth middleware and is passed explicitly to every service call.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mlindvall/korjournal/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Start(ctx context.Context, userID uuid.UUID, input domain.StartTrip) (domain.Trip, error)
	Finish(ctx context.Context, userID uuid.UUID, input domain.FinishTrip) (domain.Trip, error)
	Create(ctx context.Context, userID uuid.UUID, input domain.TripInput) (domain.Trip, error)
	Update(ctx context.Context, userID, id uuid.UUID, input domain.TripInput) (domain.Trip, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, error)
}

// ExportServicer assembles the journal export rows.
type ExportServicer interface {
	Journal(ctx context.Context, userID uuid.UUID, filter domain.JournalFilter) ([]domain.JournalRow, error)
}

// TemplateServicer defines the trip template operations.
type TemplateServicer interface {
	Create(ctx context.Context, userID uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.TripTemplate, error)
	Update(ctx context.Context, userID, id uuid.UUID, tpl domain.TripTemplate) (domain.TripTemplate, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// SettingsServicer manages per-user Home Assistant settings.
type SettingsServicer interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.HASettings, error)
	Update(ctx context.Context, userID uuid.UUID, input domain.HASettings) (domain.HASettings, error)
}

// HAServicer polls the odometer through Home Assistant.
type HAServicer interface {
	Poll(ctx context.Context, userID uuid.UUID, vehicleReg string) (domain.OdometerReading, error)
	Refresh(ctx context.Context, userID uuid.UUID, vehicleReg string) (domain.OdometerReading, error)
}

// Pinger is the health check's view of the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	trips     TripServicer
	exports   ExportServicer
	templates TemplateServicer
	settings  SettingsServicer
	ha        HAServicer
	db        Pinger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, exports ExportServicer, templates TemplateServicer, settings SettingsServicer, ha HAServicer, db Pinger) *Server {
	return &Server{
		trips:     trips,
		exports:   exports,
		templates: templates,
		settings:  settings,
		ha:        ha,
		db:        db,
	}
}

// Routes mounts every authenticated endpoint on a fresh router. The caller
// wraps it with the middleware chain (auth, logging, CORS); /healthz is
// registered separately in main so it stays outside auth.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.listTrips)
		r.Post("/", s.createTrip)
		r.Post("/start", s.startTrip)
		r.Post("/finish", s.finishTrip)
		r.Put("/{tripID}", s.updateTrip)
		r.Delete("/{tripID}", s.deleteTrip)
	})

	r.Get("/exports/journal.csv", s.exportJournalCSV)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.listTemplates)
		r.Post("/", s.createTemplate)
		r.Put("/{templateID}", s.updateTemplate)
		r.Delete("/{templateID}", s.deleteTemplate)
	})

	r.Get("/settings", s.getSettings)
	r.Put("/settings", s.updateSettings)

	r.Route("/integrations/home-assistant", func(r chi.Router) {
		r.Post("/poll", s.haPoll)
		r.Post("/refresh", s.haRefresh)
	})

	return r
}

// Healthz returns the unauthenticated health handler.
func (s *Server) Healthz() http.HandlerFunc {
	return s.healthz
}
