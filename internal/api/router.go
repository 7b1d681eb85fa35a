package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airlens/airlens/internal/airwave"
	"github.com/airlens/airlens/internal/refresher"
	"github.com/airlens/airlens/internal/store"
)

func NewRouter(s store.Store, bus airwave.Client, ref *refresher.Refresher, adminToken string, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimit))

	readings := NewReadingsHandler(s, bus)
	profiles := NewProfilesHandler(s)
	scores := NewScoresHandler(s, ref)
	fc := NewForecastHandler(s, bus)
	admin := NewAdminHandler(s, ref)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Post("/readings", readings.Create)
		r.Get("/readings", readings.List)
		r.Get("/readings/stats", readings.Stats)
		r.Get("/readings/{id}", readings.Get)

		r.Put("/users/{id}/profile", profiles.UpsertProfile)
		r.Get("/users/{id}/profile", profiles.GetProfile)
		r.Put("/users/{id}/health-profile", profiles.UpsertHealthProfile)
		r.Get("/users/{id}/health-profile", profiles.GetHealthProfile)

		r.Post("/users/{id}/score", scores.Compute)
		r.Get("/users/{id}/score", scores.Latest)
		r.Get("/scores/{id}/explain", scores.Explain)

		r.Get("/forecast", fc.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Get("/admin/stats", admin.Stats)
			r.Post("/admin/refresh/{id}", admin.Refresh)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
