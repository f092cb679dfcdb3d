package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"donations/internal/http/handlers"
	"donations/internal/middleware"
)

// NewRouter mounts the donation endpoints. lookup may be nil when no GeoIP
// database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(app.Config.CORSAllowedOrigins, &app.Logger),
	)
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)

	r.Get("/v1/healthz", app.Health)

	limit := middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute)

	r.Route("/api/donations", func(r chi.Router) {
		r.Options("/initialize", app.Preflight)
		r.With(limit, middleware.Country(lookup)).Post("/initialize", app.DonationsInitialize)

		r.Options("/verify", app.Preflight)
		r.With(limit).Post("/verify", app.DonationsVerify)

		r.Options("/webhook", app.Preflight)
		r.Post("/webhook", app.DonationsWebhook)
	})

	return r
}
