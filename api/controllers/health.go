package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/vitrinebr/loja-api/api/responses"
	"github.com/vitrinebr/loja-api/pkg/config"
	"github.com/vitrinebr/loja-api/pkg/db"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	"github.com/vitrinebr/loja-api/pkg/logger"
	pkgredis "github.com/vitrinebr/loja-api/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Loja-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when postgres and redis answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Loja-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		var failures error
		check := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "missing"
				failures = multierr.Append(failures, pkgerrors.New(pkgerrors.CodeDependency, name+" not configured"))
				return
			}
			if err := ping(ctx); err != nil {
				checks[name] = "unavailable"
				failures = multierr.Append(failures, err)
				return
			}
			checks[name] = "ok"
		}

		var dbPing, redisPing func(context.Context) error
		if dbP != nil {
			dbPing = dbP.Ping
		}
		if redisP != nil {
			redisPing = redisP.Ping
		}
		check("database", dbPing)
		check("redis", redisPing)

		if failures != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
