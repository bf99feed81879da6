package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/driven"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ driven.Recorder = (*Metrics)(nil)

// Metrics records flow and analysis measurements on a private registry
type Metrics struct {
	registry *prometheus.Registry

	flowInvocations *prometheus.CounterVec
	flowDuration    *prometheus.HistogramVec
	analyses        *prometheus.CounterVec
}

func New() (*Metrics, error) {
	// Custom registry, the default one is left alone
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		flowInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_center_flow_invocations_total",
				Help: "AI flow invocations by outcome (success or error kind)",
			},
			[]string{"flow", "outcome"},
		),
		flowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "security_center_flow_duration_seconds",
				Help:    "AI flow latency in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"flow"},
		),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_center_analyses_total",
				Help: "Finished analyses by outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.flowInvocations,
		m.flowDuration,
		m.analyses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering collector: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) ObserveFlow(flow, outcome string, duration time.Duration) {
	m.flowInvocations.WithLabelValues(flow, outcome).Inc()
	m.flowDuration.WithLabelValues(flow).Observe(duration.Seconds())
}

func (m *Metrics) ObserveAnalysis(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus / OpenMetrics format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// NewServer returns the standalone metrics server bound to addr
func (m *Metrics) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
