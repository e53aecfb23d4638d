package observability

import (
	"net/http"

	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "questionnaire"

// Result label values of questionnaire_commands_total.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultIgnored  = "ignored"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Commands    *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Completed   prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh private registry, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Configuration commands by command name and result.",
			},
			[]string{"command", "result"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flow_transitions_total",
				Help:      "Flow state transitions.",
			},
			[]string{"from", "to", "event"},
		),
		Completed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flows_completed_total",
				Help:      "Respondent flows that reached the completed state.",
			},
		),
	}
	reg.MustRegister(m.Commands, m.Transitions, m.Completed)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// Hooks returns observers that record engine activity.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommand: func(ev domain.CommandEvent) {
			result := ResultApplied
			switch {
			case ev.Rejected:
				result = ResultRejected
			case ev.Ignored:
				result = ResultIgnored
			}
			m.Commands.WithLabelValues(ev.Command, result).Inc()
		},
		OnTransition: func(ev domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(ev.From), string(ev.To), string(ev.Event)).Inc()
			if ev.To == domain.StatusCompleted && ev.From != domain.StatusCompleted {
				m.Completed.Inc()
			}
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
