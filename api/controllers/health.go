package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rkdoors/storefront-backend/api/responses"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/config"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/logger"
)

const (
	envHeader    = "X-RKDoors-Env"
	probeTimeout = 2 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type catalogProbe interface {
	Loading() bool
	Err() string
}

type mirrorProbe interface {
	Status() orders.MirrorStatus
}

// ReadinessDeps lists what the ready probe inspects. Nil members are skipped.
type ReadinessDeps struct {
	DB      pinger
	Redis   pinger
	Catalog catalogProbe
	Orders  mirrorProbe
}

type readiness struct {
	Status  string               `json:"status"`
	Checks  map[string]string    `json:"checks"`
	Catalog *catalogReadiness    `json:"catalog,omitempty"`
	Orders  *orders.MirrorStatus `json:"orders,omitempty"`
}

type catalogReadiness struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady fails when the database or Redis cannot be reached. Catalog and
// order mirror state are reported but never fail the probe: both recover on
// their own and the storefront keeps serving the last snapshot meanwhile.
func HealthReady(cfg *config.Config, deps ReadinessDeps, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false
		for name, p := range map[string]pinger{"db": deps.DB, "redis": deps.Redis} {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = err.Error()
				failed = true
				continue
			}
			checks[name] = "ok"
		}
		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}

		out := readiness{Status: "ready", Checks: checks}
		if deps.Catalog != nil {
			out.Catalog = &catalogReadiness{Loading: deps.Catalog.Loading(), Error: deps.Catalog.Err()}
		}
		if deps.Orders != nil {
			status := deps.Orders.Status()
			out.Orders = &status
		}
		responses.WriteSuccess(w, out)
	}
}
