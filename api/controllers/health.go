package controllers

import (
	"context"
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

// Pinger is satisfied by backing stores that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BreadDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both the database and the session
// store answer a ping.
func HealthReady(cfg *config.Config, database, sessions Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BreadDesk-Env", cfg.App.Env)

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if sessions != nil {
			if err := sessions.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, "ready", map[string]string{"status": "ready"})
	}
}
