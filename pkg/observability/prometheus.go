package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface on a private Prometheus
// registry. Serve it with [Prometheus.Handler].
type Prometheus struct {
	registry *prometheus.Registry

	LayoutDuration   prometheus.Histogram
	LayoutsTotal     *prometheus.CounterVec
	CacheEventsTotal *prometheus.CounterVec
	CacheBytesTotal  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// NewPrometheus creates the collectors on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{registry: reg}

	p.LayoutDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cladeview_layout_duration_seconds",
			Help:    "Time spent laying out and rescaling a tree",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	p.LayoutsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cladeview_layouts_total",
			Help: "Total number of layout runs by result",
		},
		[]string{"result"},
	)

	p.CacheEventsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cladeview_cache_events_total",
			Help: "Cache hits, misses and writes by key family",
		},
		[]string{"event", "kind"},
	)

	p.CacheBytesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cladeview_cache_written_bytes_total",
			Help: "Bytes written to the cache by key family",
		},
		[]string{"kind"},
	)

	p.HTTPRequests = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cladeview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	p.HTTPDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cladeview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	return p
}

// Registry returns the underlying Prometheus registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Register installs p as the layout, cache and HTTP hooks.
func (p *Prometheus) Register() {
	SetLayoutHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func (p *Prometheus) OnLayoutStart(context.Context, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, _ int, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	p.LayoutsTotal.WithLabelValues(result).Inc()
	p.LayoutDuration.Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, kind string) {
	p.CacheEventsTotal.WithLabelValues("hit", kind).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, kind string) {
	p.CacheEventsTotal.WithLabelValues("miss", kind).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, kind string, size int) {
	p.CacheEventsTotal.WithLabelValues("set", kind).Inc()
	p.CacheBytesTotal.WithLabelValues(kind).Add(float64(size))
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ LayoutHooks = (*Prometheus)(nil)
	_ CacheHooks  = (*Prometheus)(nil)
	_ HTTPHooks   = (*Prometheus)(nil)
)
