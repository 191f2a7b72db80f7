package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulesCreated counts schedules inserted, labelled by how they were
	// created ("manual" through the API, "successor" by a completion).
	SchedulesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_schedules_created_total",
			Help: "The total number of maintenance schedules created.",
		},
		[]string{"origin"},
	)

	// SchedulesCompleted counts committed completion transactions.
	SchedulesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_schedules_completed_total",
			Help: "The total number of maintenance schedules completed.",
		},
		[]string{"frequency_type"},
	)

	// OverdueTransitions counts rows moved from pending to overdue by reconciliation.
	OverdueTransitions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "maintenance_schedules_overdue_transitions_total",
			Help: "The total number of schedules transitioned from pending to overdue.",
		},
	)
)
