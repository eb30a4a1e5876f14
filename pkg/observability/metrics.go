package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/campusmate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "campusmate"

// Metrics holds the coordinator collectors.
type Metrics struct {
	registry *prometheus.Registry

	Messages        *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Steps           *prometheus.CounterVec
	StepDuration    *prometheus.HistogramVec
	Sessions        *prometheus.CounterVec
	SessionDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry, alongside the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "messages_total",
				Help:      "Messages routed by the coordinator",
			},
			[]string{"type", "recipient"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "session_transitions_total",
				Help:      "Session status changes",
			},
			[]string{"from", "to"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "steps_total",
				Help:      "Executed plan steps by result status",
			},
			[]string{"worker", "operation", "status"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "step_duration_seconds",
				Help:      "Time from dispatching a step to recording its result",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker", "operation"},
		),
		Sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "sessions_total",
				Help:      "Sessions that reached a terminal status",
			},
			[]string{"status", "outcome"},
		),
		SessionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "session_duration_seconds",
				Help:      "Lifetime of a session from registration to terminal status",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"status"},
		),
	}
	m.registry.MustRegister(
		m.Messages, m.Transitions, m.Steps, m.StepDuration, m.Sessions, m.SessionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records every lifecycle event.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMessage: func(ctx context.Context, e *domain.MessageEvent) {
			m.Messages.WithLabelValues(string(e.Message.Type), e.Message.Recipient).Inc()
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnStepResult: func(ctx context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Worker, e.Operation, string(e.Result.Status)).Inc()
			m.StepDuration.WithLabelValues(e.Worker, e.Operation).Observe(e.Duration.Seconds())
		},
		OnTerminal: func(ctx context.Context, e *domain.TerminalEvent) {
			m.Sessions.WithLabelValues(string(e.Status), string(e.Outcome)).Inc()
			m.SessionDuration.WithLabelValues(string(e.Status)).Observe(e.Duration.Seconds())
		},
	}
}
