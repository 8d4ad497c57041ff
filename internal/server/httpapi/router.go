package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/trainingportal/internal/mirrorapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Router builds the handler tree. Watch streams are long lived, so the
// request timeout only wraps the plain request/response routes.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: a.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
	r.Use(corsMiddleware.Handler)

	timeout := middleware.Timeout(a.opts.RequestTimeout)

	r.With(timeout).Get(mirrorapi.HealthPath, a.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(timeout).Post("/devices", a.EnrollDevice)

		r.Group(func(r chi.Router) {
			r.Use(a.deviceAuth)
			r.Get("/docs/*", a.GetDocument)
			r.With(timeout).Put("/docs/*", a.PutDocument)
		})
	})

	return r
}
