// Package observability wires prometheus collectors into the service
// lifecycle hooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stateline-dev/stateline/pkg/domain"
)

// Metrics holds the prometheus collectors for the workflow service.
type Metrics struct {
	DefinitionsCreated prometheus.Counter
	InstancesCreated   prometheus.Counter
	Transitions        *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DefinitionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stateline_definitions_created_total",
			Help: "Total number of workflow definitions accepted",
		}),
		InstancesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stateline_instances_created_total",
			Help: "Total number of workflow instances created",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stateline_transitions_total",
			Help: "Total number of executed transitions",
		}, []string{"action_id"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stateline_rejections_total",
			Help: "Total number of rejected action executions",
		}, []string{"action_id"}),
	}
	reg.MustRegister(m.DefinitionsCreated, m.InstancesCreated, m.Transitions, m.Rejections)
	return m
}

// Hooks returns lifecycle hooks that record the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDefinitionCreated: func(ctx context.Context, e *domain.DefinitionEvent) {
			m.DefinitionsCreated.Inc()
		},
		OnInstanceCreated: func(ctx context.Context, e *domain.InstanceEvent) {
			m.InstancesCreated.Inc()
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.ActionID).Inc()
		},
		OnRejection: func(ctx context.Context, e *domain.TransitionEvent) {
			m.Rejections.WithLabelValues(e.ActionID).Inc()
		},
	}
}
