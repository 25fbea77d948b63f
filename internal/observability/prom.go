package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "todohub"

// Prom holds the API's collectors. Methods are nil-safe where components
// may run without metrics (tests, tools).
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         prometheus.Gauge

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// event: register|login|token_verify
	AuthEventsTotal *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	httpLabels := []string{"method", "route", "status"}

	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route template and status.",
		}, httpLabels),
		RequestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route template and status.",
			Buckets:   prometheus.DefBuckets,
		}, httpLabels),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}),
		DbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Store operation latency by logical operation and result.",
			Buckets:   prometheus.ExponentialBuckets(0.002, 2, 11),
		}, []string{"op", "status"}),
		DbErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Store failures by logical operation and error class.",
		}, []string{"op", "class"}),
		AuthEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Registrations, logins and token checks by result.",
		}, []string{"event", "result"}),
	}

	reg.MustRegister(
		p.RequestsTotal,
		p.RequestsDuration,
		p.InFlight,
		p.DbQueryDuration,
		p.DbErrorsTotal,
		p.AuthEventsTotal,
	)
	return p
}

func (p *Prom) IncAuth(event, result string) {
	if p == nil {
		return
	}
	p.AuthEventsTotal.WithLabelValues(event, result).Inc()
}

// GinHandleMiddleware records request count and latency labelled by the
// matched route template so ids never reach label values.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if p == nil {
			ctx.Next()
			return
		}

		p.InFlight.Inc()
		start := time.Now()

		defer func() {
			p.InFlight.Dec()

			route := ctx.FullPath()
			if route == "" {
				route = "unmatched"
			}
			labels := []string{ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())}

			p.RequestsTotal.WithLabelValues(labels...).Inc()
			p.RequestsDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		}()

		ctx.Next()
	}
}
