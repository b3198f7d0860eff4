package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TinoSanchez/app-achatrevente/api/controllers"
	"github.com/TinoSanchez/app-achatrevente/api/middleware"
	"github.com/TinoSanchez/app-achatrevente/internal/auth"
	"github.com/TinoSanchez/app-achatrevente/internal/importexport"
	"github.com/TinoSanchez/app-achatrevente/internal/prefs"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/TinoSanchez/app-achatrevente/pkg/metrics"
	"github.com/TinoSanchez/app-achatrevente/pkg/redis"
	"github.com/TinoSanchez/app-achatrevente/pkg/storage"
)

// Deps carries everything the HTTP surface needs. RedisClient is nil on
// the device-local backend, which disables the auth rate limiter.
type Deps struct {
	Gateway     auth.Gateway
	AuthGuard   func(http.Handler) http.Handler
	RecordStore records.Store
	SKUService  *records.SKUService
	PrefStore   prefs.Store
	PrefSaver   *prefs.DebouncedSaver
	Porter      *importexport.Service
	Images      storage.ImageStore
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	Health      map[string]controllers.Pinger
	MediaRoot   string
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if deps.MediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaRoot))))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		login := controllers.AuthLogin(deps.Gateway, logg)
		register := controllers.AuthRegister(deps.Gateway, logg)
		if deps.RedisClient != nil {
			r.With(middleware.AuthRateLimit(middleware.LoginPolicy(cfg.AuthRateLimit), deps.RedisClient, logg)).Post("/login", login)
			r.With(middleware.AuthRateLimit(middleware.RegisterPolicy(cfg.AuthRateLimit), deps.RedisClient, logg)).Post("/register", register)
		} else {
			r.Post("/login", login)
			r.Post("/register", register)
		}
		r.Post("/logout", controllers.AuthLogout(deps.Gateway, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthGuard)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", controllers.ListRecords(deps.RecordStore, logg))
			r.Post("/", controllers.CreateRecord(deps.RecordStore, logg))
			r.Get("/stream", controllers.StreamRecords(deps.RecordStore, logg))
			r.Get("/resolve", controllers.ResolveRecord(deps.RecordStore, logg))
			r.Post("/sku", controllers.NextSKU(deps.SKUService, logg))
			r.Post("/bulk-delete", controllers.BulkDeleteRecords(deps.RecordStore, logg))
			r.Post("/import", controllers.ImportRecords(deps.Porter, logg))
			r.Get("/export", controllers.ExportRecords(deps.Porter, logg))
			r.Get("/{id}", controllers.GetRecord(deps.RecordStore, logg))
			r.Put("/{id}", controllers.UpdateRecord(deps.RecordStore, logg))
			r.Delete("/{id}", controllers.DeleteRecord(deps.RecordStore, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(deps.RecordStore, deps.PrefStore, logg))

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", controllers.GetPreferences(deps.PrefStore, logg))
			r.Put("/", controllers.SavePreferences(deps.PrefStore, deps.PrefSaver, logg))
			r.Delete("/", controllers.ClearPreferences(deps.PrefStore, logg))
		})

		r.Post("/images", controllers.UploadImage(deps.Images, cfg.Media.MaxUploadMB, logg))
	})

	return r
}
