package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the reporting core.
type Metrics struct {
	CasesCreated     prometheus.Counter
	IntakeRejections prometheus.Counter
	TrackLookups     prometheus.Counter
	TrackMisses      prometheus.Counter
	Transitions      *prometheus.CounterVec
	MessagesAppended *prometheus.CounterVec
	RequestLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_cases_created_total",
			Help: "Total number of cases created.",
		}),
		IntakeRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_intake_rejections_total",
			Help: "Total number of submissions refused by the intake gate.",
		}),
		TrackLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_track_lookups_total",
			Help: "Total number of credential tracking lookups.",
		}),
		TrackMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_track_misses_total",
			Help: "Total number of tracking lookups that resolved no case.",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbox_status_transitions_total",
			Help: "Total number of successful status transitions.",
		}, []string{"to"}),
		MessagesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbox_messages_appended_total",
			Help: "Total number of messages appended to case threads.",
		}, []string{"sender"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalbox_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// collide on promauto's default registry.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		CasesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_cases_created_total", Help: "test",
		}),
		IntakeRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_intake_rejections_total", Help: "test",
		}),
		TrackLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_track_lookups_total", Help: "test",
		}),
		TrackMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "signalbox_track_misses_total", Help: "test",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbox_status_transitions_total", Help: "test",
		}, []string{"to"}),
		MessagesAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbox_messages_appended_total", Help: "test",
		}, []string{"sender"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "signalbox_http_request_duration_seconds", Help: "test",
		}, []string{"route", "status"}),
	}
}

// statusRecorder captures the response status for the latency histogram.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Latency returns middleware that observes request duration per route.
func Latency(m *Metrics, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.RequestLatency.
				WithLabelValues(route, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
