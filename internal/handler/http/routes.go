package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version/", h.getServerVersion)
	})

	// ledger routes, bearer token required
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Post("/api/ledgers", h.createLedger)
		r.Route("/api/ledgers/{ledgerID}", func(r chi.Router) {
			r.Get("/", h.getLedger)
			r.Get("/canonical", h.getCanonical)
			r.Post("/push", h.push)
			r.Post("/lease", h.acquireLease)
			r.Delete("/lease", h.releaseLease)
		})
	})

	return router
}
