package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec

	HealthChecksTotal *prometheus.CounterVec

	RateLimitHitsTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agro_bot_commands_total",
				Help: "Total number of bot commands processed",
			},
			[]string{"command", "status"},
		),
		CommandDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agro_bot_command_duration_seconds",
				Help:    "Command handling duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"command"},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agro_bot_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agro_bot_searches_total",
				Help: "Total number of external search requests",
			},
			[]string{"search_type", "status"},
		),
		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agro_bot_search_duration_seconds",
				Help:    "External search duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30},
			},
			[]string{"search_type"},
		),

		HealthChecksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agro_bot_health_checks_total",
				Help: "Total number of external search health checks",
			},
			[]string{"status"},
		),

		RateLimitHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agro_bot_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordCommand(command, status string, duration time.Duration) {
	m.CommandsTotal.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func (m *Metrics) RecordSearch(searchType, status string, duration time.Duration) {
	m.SearchesTotal.WithLabelValues(searchType, status).Inc()
	m.SearchDuration.WithLabelValues(searchType).Observe(duration.Seconds())
}

func (m *Metrics) RecordHealthCheck(healthy bool) {
	status := "ok"
	if !healthy {
		status = "fail"
	}
	m.HealthChecksTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHitsTotal.Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
