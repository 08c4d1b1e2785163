package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives forecast engine metrics. The engine calls it on
// every request; implementations must be safe for concurrent use.
type Recorder interface {
	ForecastCacheHit()
	ForecastCacheMiss()
	ObserveForecastDuration(d time.Duration)
}

// Noop discards all metrics. Used in tests and when no registry is
// wired.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) ForecastCacheHit()                     {}
func (*Noop) ForecastCacheMiss()                    {}
func (*Noop) ObserveForecastDuration(time.Duration) {}

// Prometheus records forecast metrics into a prometheus registry.
type Prometheus struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	duration    prometheus.Histogram
}

// NewPrometheus creates and registers the forecast collectors.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finflow",
			Subsystem: "forecast",
			Name:      "cache_hits_total",
			Help:      "Number of forecast requests served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finflow",
			Subsystem: "forecast",
			Name:      "cache_misses_total",
			Help:      "Number of forecast requests that ran the full pipeline.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finflow",
			Subsystem: "forecast",
			Name:      "computation_seconds",
			Help:      "Wall time of full forecast computations.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(p.cacheHits, p.cacheMisses, p.duration)
	return p
}

func (p *Prometheus) ForecastCacheHit()  { p.cacheHits.Inc() }
func (p *Prometheus) ForecastCacheMiss() { p.cacheMisses.Inc() }

func (p *Prometheus) ObserveForecastDuration(d time.Duration) {
	p.duration.Observe(d.Seconds())
}
