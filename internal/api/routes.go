package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. corsOrigins lists the browser origins
// allowed to call the API; empty means same-origin only.
func SetupRoutes(h *Handlers, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/catches", func(r chi.Router) {
			r.Post("/", h.CreateCatch)
			r.Get("/", h.ListCatches)
			r.Post("/{catchID}/drafts", h.GenerateDrafts)
			r.Get("/{catchID}/drafts", h.ListDrafts)
		})

		r.Route("/buyers", func(r chi.Router) {
			r.Post("/", h.CreateBuyer)
			r.Get("/", h.ListBuyers)
		})

		r.Route("/prices", func(r chi.Router) {
			r.Get("/", h.ListPrices)
			r.Get("/{fishType}", h.ResolvePrice)
			r.Put("/{fishType}", h.OverridePrice)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/{draftID}", h.GetDraft)
			r.Post("/{draftID}/send", h.ApproveAndSend)
		})
	})

	return r
}
