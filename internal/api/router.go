package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/soundry/Royalty-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/soundry/Royalty-Ledger-Backend/internal/api/middleware"
	"github.com/soundry/Royalty-Ledger-Backend/internal/config"
	"github.com/soundry/Royalty-Ledger-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router. internalAuth guards the
// machine-to-machine routes (ingestion, payout processing); pass nil to
// leave them open, as tests and single-operator deployments do.
func NewRouter(systemService *service.SystemService, ledgerService *service.LedgerService, internalAuth *custommiddleware.APIKeyAuth, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	internal := func(r chi.Router) chi.Router {
		if internalAuth != nil {
			return r.With(internalAuth.Handler)
		}
		return r
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/earnings", func(r chi.Router) {
			earningsHandler := handlers.NewEarningsHandler(ledgerService)

			internal(r).Post("/ingest", earningsHandler.Ingest)

			r.Get("/summary", earningsHandler.Summary)
			r.Get("/history", earningsHandler.History)

			r.Route("/song/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", earningsHandler.SongEarnings)
			})

			r.Route("/record/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", earningsHandler.GetRecord)
				r.Put("/splits", earningsHandler.UpdateSplits)
				r.Get("/notifications", earningsHandler.Notifications)
				r.Put("/notifications/{notificationId}/read", earningsHandler.MarkNotificationRead)
			})
		})

		r.Route("/payout", func(r chi.Router) {
			payoutHandler := handlers.NewPayoutHandler(ledgerService)

			r.Post("/", payoutHandler.RequestPayout)
			r.Get("/", payoutHandler.PayoutHistory)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				internal(r).Post("/process", payoutHandler.ProcessPayout)
			})
		})
	})

	return r
}
