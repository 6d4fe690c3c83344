package controllers

import (
	"net/http"

	"github.com/oneroomhq/oneroom-backend/api/responses"
	"github.com/oneroomhq/oneroom-backend/pkg/config"
	"github.com/oneroomhq/oneroom-backend/pkg/db"
	pkgerrors "github.com/oneroomhq/oneroom-backend/pkg/errors"
	"github.com/oneroomhq/oneroom-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OneRoom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OneRoom-Env", cfg.App.Env)
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not reachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
