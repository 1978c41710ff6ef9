// Package observability bridges walk lifecycle events into Prometheus
// metrics and wraps HTTP handlers with request accounting.
package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/numberhop/numberhop/pkg/domain"
)

// Metrics holds every collector the service exports.
type Metrics struct {
	walksStarted  prometheus.Counter
	walksFinished *prometheus.CounterVec
	walkDuration  prometheus.Histogram
	moves         prometheus.Counter
	absorbedHops  prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg
// falls back to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		walksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "numberhop_walks_started_total",
			Help: "Total number of walks started",
		}),
		walksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "numberhop_walks_finished_total",
			Help: "Total number of walks finished, by outcome",
		}, []string{"outcome"}),
		walkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "numberhop_walk_duration_seconds",
			Help:    "Wall-clock duration of finished walks",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		moves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "numberhop_moves_total",
			Help: "Total number of committed hops",
		}),
		absorbedHops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "numberhop_absorbed_hops_total",
			Help: "Hops shortened or swallowed by the board edge",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "numberhop_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numberhop_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.walksStarted,
		m.walksFinished,
		m.walkDuration,
		m.moves,
		m.absorbedHops,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Hooks returns lifecycle hooks that record walk metrics. Combine with
// other hooks before handing them to a sequencer.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, _ *domain.RunEvent) {
			m.walksStarted.Inc()
		},
		OnRunEnd: func(_ context.Context, ev *domain.RunEvent) {
			outcome := "completed"
			if !ev.Completed {
				outcome = "canceled"
			}
			m.walksFinished.WithLabelValues(outcome).Inc()
			m.walkDuration.Observe(ev.Duration.Seconds())
		},
		OnMoveEnd: func(_ context.Context, ev *domain.MoveEvent) {
			m.moves.Inc()
			if ev.Move.AppliedValue != ev.Requested {
				m.absorbedHops.Inc()
			}
		},
	}
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
