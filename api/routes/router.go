package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ordercontrollers "github.com/Saadasw/BookOrderBackend/api/controllers/orders"
	"github.com/Saadasw/BookOrderBackend/api/handlers"
	"github.com/Saadasw/BookOrderBackend/api/middleware"
	internalorders "github.com/Saadasw/BookOrderBackend/internal/orders"
	"github.com/Saadasw/BookOrderBackend/internal/verification"
	"github.com/Saadasw/BookOrderBackend/pkg/config"
	"github.com/Saadasw/BookOrderBackend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP handlers.Pinger,
	redisP handlers.Pinger,
	verificationSvc verification.Service,
	ordersSvc internalorders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/", handlers.Index())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", handlers.HealthLive(cfg))
		r.Get("/ready", handlers.HealthReady(cfg, logg, dbP, redisP))
	})

	if !cfg.App.IsProd() {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/initiate", ordercontrollers.Initiate(verificationSvc, logg))
		r.Post("/verify", ordercontrollers.Verify(verificationSvc, logg))
		r.Post("/resend-code", ordercontrollers.ResendCode(verificationSvc, logg))
		r.Get("/", ordercontrollers.List(ordersSvc, logg))
		r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))

		// Mutations require a live session token proving phone ownership.
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(verificationSvc, logg))
			r.Put("/{orderId}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
			r.Delete("/{orderId}", ordercontrollers.Cancel(ordersSvc, logg))
		})
	})

	return r
}
