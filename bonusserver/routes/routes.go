package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"usdtgverse-core/bonusserver/controllers"
)

// Register mounts the bonusserver's routes, including the Prometheus
// scrape endpoint, on r.
func Register(r chi.Router, c *controllers.BonusController) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", c.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/bonus", func(r chi.Router) {
		r.Post("/quote", c.Quote)
		r.Post("/purchase", c.ConfirmPurchase)
		r.Get("/user-stats", c.UserStats)
		r.Get("/system-stats", c.SystemStats)
	})
}
