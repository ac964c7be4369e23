// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/documents"
	"github.com/shalabh-srivastava/legalsuite/internal/logging"
	"github.com/shalabh-srivastava/legalsuite/internal/management"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
	"github.com/shalabh-srivastava/legalsuite/internal/middleware"
	"github.com/shalabh-srivastava/legalsuite/internal/research"
)

// Deps is everything the router serves.
type Deps struct {
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	CORSOrigins  []string
	AuthRequired bool

	Sessions   middleware.SessionLookup
	Auth       *auth.Handler
	Research   *research.Handler
	Management *management.Handler
	Documents  *documents.Handler
	Health     *Health
}

// NewRouter wires every route under /api plus /metrics.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadSession(d.Sessions))

		r.Get("/", d.Health.Root)
		r.Get("/health", d.Health.Check)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", d.Auth.Login)
			r.Post("/logout", d.Auth.Logout)
			r.With(middleware.RequireAuth(d.Sessions)).Get("/me", d.Auth.Me)
		})

		r.Group(func(r chi.Router) {
			if d.AuthRequired {
				r.Use(middleware.RequireAuth(d.Sessions))
			}

			r.Post("/legal-research", d.Research.Create)
			r.Get("/research-history/{firmID}", d.Research.History)
			r.Get("/research/{id}", d.Research.Get)

			r.Post("/law-firms", d.Management.CreateFirm)
			r.Get("/law-firms", d.Management.ListFirms)
			r.Post("/users", d.Management.CreateUser)
			r.Get("/users/{firmID}", d.Management.ListUsers)
			r.Post("/cases", d.Management.CreateCase)
			r.Get("/cases/{id}", d.Management.ListCases)
			r.Get("/cases/detail/{caseID}", d.Management.GetCase)
			r.Put("/cases/{id}", d.Management.UpdateCase)

			r.Post("/documents/upload", d.Documents.Upload)
			r.Get("/documents/{firmID}", d.Documents.List)
			r.Get("/documents/file/{docID}", d.Documents.Download)
		})
	})

	return r
}
