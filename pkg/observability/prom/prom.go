// Package prom implements the observability hooks on Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	m.Register() // install as the global hooks
//	http.Handle("/metrics", m.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sheetcalc/pkg/observability"
)

const namespace = "sheetcalc"

// Metrics records sheet, evaluation, cache and HTTP events. It implements
// every hook interface of package observability.
type Metrics struct {
	gatherer prometheus.Gatherer

	// sheet
	mutations      *prometheus.CounterVec   // labels: kind
	mutationTime   prometheus.Histogram
	affectedCells  prometheus.Histogram
	cyclesRejected prometheus.Counter

	// eval
	recalcTime    prometheus.Histogram
	formulaErrors *prometheus.CounterVec // labels: code

	// cache
	cacheLookups *prometheus.CounterVec // labels: key_type, result
	cacheBytes   *prometheus.CounterVec // labels: key_type

	// http
	requests    *prometheus.CounterVec   // labels: method, route, status
	requestTime *prometheus.HistogramVec // labels: method, route
	inFlight    prometheus.Gauge
}

// New creates the metrics and registers them, together with the Go runtime
// and process collectors, with reg.
func New(reg *prometheus.Registry) *Metrics {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "mutations_total",
			Help:      "Committed cell mutations by new content kind",
		}, []string{"kind"}),
		mutationTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "mutation_duration_seconds",
			Help:      "Time to apply a mutation and compute its recalculation order",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		affectedCells: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "affected_cells",
			Help:      "Length of the recalculation order returned by a mutation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		cyclesRejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "cycles_rejected_total",
			Help:      "Mutations rolled back because they would create a circular dependency",
		}),

		recalcTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eval",
			Name:      "recalculation_duration_seconds",
			Help:      "Time to evaluate one recalculation pass",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		formulaErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eval",
			Name:      "formula_errors_total",
			Help:      "Formulas that evaluated to an error value, by error code",
		}, []string{"code"}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by key type and result (hit, miss)",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),
	}
}

// Register installs m as the global sheet, eval, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetSheetHooks(m)
	observability.SetEvalHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) OnContentSet(_, kind string, affected int, d time.Duration) {
	m.mutations.WithLabelValues(kind).Inc()
	m.mutationTime.Observe(d.Seconds())
	m.affectedCells.Observe(float64(affected))
}

func (m *Metrics) OnCycleRejected(string) {
	m.cyclesRejected.Inc()
}

func (m *Metrics) OnRecalculate(_ int, d time.Duration) {
	m.recalcTime.Observe(d.Seconds())
}

func (m *Metrics) OnFormulaError(_, code string) {
	m.formulaErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string) {
	m.inFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.SheetHooks = (*Metrics)(nil)
	_ observability.EvalHooks  = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
