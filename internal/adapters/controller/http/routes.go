package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(h.withLogging)

	router.Get("/healthz", h.healthz)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/content-types", h.contentTypes)
		r.Get("/logos", h.logos)
		r.Post("/payload", h.payload)
		r.Post("/qrcode", h.qrCode)
	})

	return router
}
