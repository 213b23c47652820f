package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/budget"
	"github.com/MrJamesThe3rd/tally/internal/http/collector"
	"github.com/MrJamesThe3rd/tally/internal/http/items"
	"github.com/MrJamesThe3rd/tally/internal/http/lookup"
	"github.com/MrJamesThe3rd/tally/internal/http/report"
	"github.com/MrJamesThe3rd/tally/internal/http/session"
)

type Handlers struct {
	Session   *session.Handler
	Items     *items.Handler
	Budget    *budget.Handler
	Lookup    *lookup.Handler
	Report    *report.Handler
	Collector *collector.Handler
}

func New(authSvc *auth.Service, h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Session.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(session.Authenticate(authSvc))

			r.Route("/items", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Items.Routes(r)
			})

			r.Route("/budget", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Budget.Routes(r)
			})

			r.Route("/lookup", h.Lookup.Routes)
			r.Route("/report", h.Report.Routes)

			r.Route("/collector", func(r chi.Router) {
				r.Use(session.RequireRole(auth.RoleManager))
				h.Collector.Routes(r)
			})
		})
	})

	return router
}
