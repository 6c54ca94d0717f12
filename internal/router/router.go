// Package router sets up all HTTP routes and middleware chains for the
// StampCard API. Catalog reads, business lookups and card enrollment are
// public; every mutation of the catalog or of business records sits
// behind the admin key.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"stampcard/internal/config"
	"stampcard/internal/handlers"
	"stampcard/internal/middleware"
)

// adminRateLimit caps authenticated mutation traffic per client IP.
const (
	adminRateLimit  = 60
	adminRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. assetsDir is served read-only under /assets.
func New(cfg *config.Config, assetsDir string, icons *handlers.Icons, businesses *handlers.Businesses, cards *handlers.Cards) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", handlers.Health)

	// Icon asset files (SVG variants and PNG previews).
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(assetsDir))))

	// Public reads and customer enrollment.
	r.Get("/api/catalog", icons.GetCatalog)
	r.Get("/api/catalog/categories", icons.ListCategories)
	r.Get("/api/businesses", businesses.List)
	r.Get("/api/businesses/{id}", businesses.Get)
	r.Get("/api/businesses/{id}/qr", businesses.QR)
	r.Post("/api/businesses/{id}/cards", cards.Create)

	// Admin mutations: key-authenticated and rate-limited.
	limiter := middleware.NewRateLimiter(adminRateLimit, adminRateWindow)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(middleware.RequireAdminKey(cfg.AdminKeyHash, cfg.AdminTOTPSecret))

		r.Post("/api/catalog/categories", icons.CreateCategory)

		r.Route("/api/icons", func(r chi.Router) {
			r.Post("/", icons.CreateIcon)
			r.Patch("/{id}", icons.UpdateIcon)
			r.Delete("/{id}", icons.DeleteIcon)
		})

		r.Post("/api/businesses", businesses.Create)
		r.Put("/api/businesses/{id}", businesses.Update)
		r.Delete("/api/businesses/{id}", businesses.Delete)

		r.Get("/api/businesses/{id}/cards", cards.ListByBusiness)
		r.Post("/api/cards/{cardID}/stamps", cards.AddStamp)
		r.Post("/api/cards/{cardID}/redeem", cards.Redeem)
	})

	return r
}
