// Package httpapi composes the public and staff surfaces into one router.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "signalbox/internal/access/handler"
	"signalbox/internal/platform/metrics"
	"signalbox/internal/platform/middleware"
	"signalbox/internal/platform/telemetry"
	"signalbox/internal/ratelimit"
	casehandler "signalbox/internal/reportcase/handler"
	"signalbox/pkg/platform/middleware/metadata"
	"signalbox/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Public    *accesshandler.Handler
	Staff     *casehandler.Handler
	StaffAuth *middleware.StaffAuth
	Metrics   *metrics.Metrics
	Limiter   ratelimit.Limiter
	RateLimit int
	Logger    *slog.Logger
}

// New builds the full router: unauthenticated reporter endpoints under
// /public, token-guarded staff endpoints under /api/v1, plus health and
// metrics.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(telemetry.HTTPMiddleware("signalbox"))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/public", func(pub chi.Router) {
		pub.Use(middleware.ContentTypeJSON)
		pub.Use(ratelimit.Middleware(d.Limiter, d.RateLimit))
		pub.Use(metrics.Latency(d.Metrics, "public"))
		d.Public.Register(pub)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(d.StaffAuth.Require)
		api.Use(metrics.Latency(d.Metrics, "staff"))
		d.Staff.Register(api)
	})

	return r
}
