package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oneroomhq/oneroom-backend/api/controllers"
	"github.com/oneroomhq/oneroom-backend/api/middleware"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/db"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	dispatcher controllers.TopicSender,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS())

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", controllers.HealthLive(cfg))
			r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
		})

		if metricsHandler != nil {
			r.Method(http.MethodGet, "/metrics", metricsHandler)
		}

		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.AdminKey(cfg.Admin.Key, logg))
			r.Post("/broadcast", controllers.SendBroadcast(dispatcher, logg))
			r.Post("/rooms/{roomId}/announce", controllers.SendAnnouncement(dispatcher, logg))
		})
	})

	// Legacy broadcast hook. It answers any-origin preflight itself, so it
	// must stay outside the allowlisting CORS middleware.
	r.HandleFunc("/hooks/broadcast", controllers.HookBroadcast(dispatcher, cfg.Admin.Secret, logg))

	return r
}
