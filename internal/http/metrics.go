package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"tunedeck/internal/core"
)

// Metrics implements core.Metrics on Prometheus collectors.
type Metrics struct {
	PlayRequestsTotal *prometheus.CounterVec
	APIErrorsTotal    *prometheus.CounterVec
	TokenRefreshTotal prometheus.Counter
	RowsLoadedTotal   *prometheus.CounterVec
	ReconnectsTotal   *prometheus.CounterVec
	Playing           prometheus.Gauge
}

var _ core.Metrics = (*Metrics)(nil)

func newMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		PlayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunedeck_play_requests_total",
				Help: "Total number of play requests by backend and status",
			},
			[]string{"backend", "status"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunedeck_api_errors_total",
				Help: "Total number of failed API calls",
			},
			[]string{"operation"},
		),
		TokenRefreshTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tunedeck_token_refreshes_total",
				Help: "Total number of OAuth token refreshes",
			},
		),
		RowsLoadedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunedeck_rows_loaded_total",
				Help: "Total number of list rows fetched",
			},
			[]string{"source"},
		),
		ReconnectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunedeck_reconnects_total",
				Help: "Total number of device reconnection attempts",
			},
			[]string{"result"},
		),
		Playing: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tunedeck_playing",
				Help: "Whether something is playing",
			},
		),
	}

	registerer.MustRegister(
		metrics.PlayRequestsTotal,
		metrics.APIErrorsTotal,
		metrics.TokenRefreshTotal,
		metrics.RowsLoadedTotal,
		metrics.ReconnectsTotal,
		metrics.Playing,
	)

	return metrics
}

func (m *Metrics) RecordPlay(backend string, status core.PlayStatus) {
	m.PlayRequestsTotal.WithLabelValues(backend, status.String()).Inc()
}

func (m *Metrics) RecordAPIError(operation string) {
	m.APIErrorsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordTokenRefresh() {
	m.TokenRefreshTotal.Inc()
}

func (m *Metrics) RecordRowsLoaded(source string, n int) {
	m.RowsLoadedTotal.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) RecordReconnect(result string) {
	m.ReconnectsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) SetPlaying(playing bool) {
	if playing {
		m.Playing.Set(1)
		return
	}
	m.Playing.Set(0)
}
