package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalog-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores. A missing cache client is not a
// readiness failure; the tree cache degrades to direct reads.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Catalog-Env", cfg.App.Env)

		checks := map[string]string{"db": "ok", "cache": "ok"}
		healthy := true

		if dbP == nil {
			checks["db"] = "unconfigured"
			healthy = false
		} else if err := dbP.Ping(r.Context()); err != nil {
			checks["db"] = "unavailable"
			healthy = false
			if logg != nil {
				logg.Error(r.Context(), "health.db_ping_failed", err)
			}
		}

		if cache == nil {
			checks["cache"] = "disabled"
		} else if err := cache.Ping(r.Context()); err != nil {
			checks["cache"] = "unavailable"
			if logg != nil {
				logg.Warn(r.Context(), "health.cache_ping_failed")
			}
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}
		responses.WriteSuccess(w, checks)
	}
}
