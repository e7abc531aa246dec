package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	MembersRegistered prometheus.Counter
	UpdatesMerged     prometheus.Counter
	MembersReset      prometheus.Counter
	StatusChecks      *prometheus.CounterVec
	GrantsIssued      *prometheus.CounterVec
	BudgetExhausted   prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics against a specific registerer. Tests pass a
// fresh registry to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MembersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "duesgate_members_registered_total",
			Help: "Total number of first-time member registrations",
		}),
		UpdatesMerged: factory.NewCounter(prometheus.CounterOpts{
			Name: "duesgate_updates_merged_total",
			Help: "Total number of paid-through updates merged into existing cells",
		}),
		MembersReset: factory.NewCounter(prometheus.CounterOpts{
			Name: "duesgate_members_reset_total",
			Help: "Total number of owner-forced member resets",
		}),
		StatusChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duesgate_status_checks_total",
			Help: "Total number of status evaluations by visibility",
		}, []string{"visibility"}),
		GrantsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duesgate_grants_issued_total",
			Help: "Total number of access grants issued by scope",
		}, []string{"scope"}),
		BudgetExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "duesgate_budget_exhausted_total",
			Help: "Total number of operations aborted on homomorphic budget exhaustion",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "duesgate_operation_duration_seconds",
			Help:    "Duration of entry-point operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
