package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry        *prometheus.Registry
	eventsHandled   *prometheus.CounterVec
	eventDuration   prometheus.Histogram
	withdrawals     *prometheus.CounterVec
	ledgerBalance   *prometheus.GaugeVec
	activeSessions  prometheus.Gauge
	expiredSessions prometheus.Counter
	logger          *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	collector := &MetricsCollector{
		registry: registry,
		eventsHandled: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "bot_events_handled_total",
			Help: "Total number of user events handled, by event type and reply kind",
		}, []string{"event", "reply"}),
		eventDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "bot_event_duration_seconds",
			Help:    "Time taken to run one state machine transition",
			Buckets: prometheus.DefBuckets,
		}),
		withdrawals: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "bot_withdrawals_total",
			Help: "Withdrawals executed against the ledger, by asset and status",
		}, []string{"asset", "status"}),
		ledgerBalance: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_ledger_balance",
			Help: "Current ledger balance per asset",
		}, []string{"asset"}),
		activeSessions: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "bot_active_sessions",
			Help: "Conversation sessions currently held in memory",
		}),
		expiredSessions: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bot_sessions_expired_total",
			Help: "Idle sessions removed by the sweeper",
		}),
		logger: logger,
	}

	return collector
}

func (m *MetricsCollector) RecordEvent(event, reply string, duration time.Duration) {
	m.eventsHandled.WithLabelValues(event, reply).Inc()
	m.eventDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordWithdrawal(asset, status string) {
	m.withdrawals.WithLabelValues(asset, status).Inc()
}

func (m *MetricsCollector) UpdateBalance(asset string, balance float64) {
	m.ledgerBalance.WithLabelValues(asset).Set(balance)
}

func (m *MetricsCollector) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func (m *MetricsCollector) RecordExpiredSessions(n int) {
	m.expiredSessions.Add(float64(n))
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
