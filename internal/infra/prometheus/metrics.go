package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application-level counters exposed on /metrics.
type Metrics struct {
	LinksCreated    prometheus.Counter
	Redirects       *prometheus.CounterVec
	RateLimited     *prometheus.CounterVec
	ScreenerBlocked prometheus.Counter
	ClicksRecorded  prometheus.Counter
}

// NewMetrics registers the application counters on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		LinksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shorty_links_created_total",
			Help: "Number of short links created.",
		}),
		Redirects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shorty_redirects_total",
			Help: "Redirect resolutions by outcome.",
		}, []string{"outcome"}),
		RateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shorty_rate_limited_total",
			Help: "Creation attempts rejected by the rate limiter, by key kind.",
		}, []string{"kind"}),
		ScreenerBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shorty_screener_blocked_total",
			Help: "Creation attempts rejected by the threat screener.",
		}),
		ClicksRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shorty_clicks_recorded_total",
			Help: "Click events persisted by the consumer.",
		}),
	}
}
