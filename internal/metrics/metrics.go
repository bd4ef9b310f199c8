package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/feral-file/ff-registry/internal/domain"
)

// Metrics provides observability for the registry and the ownership authenticator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RegistryOperations     *prometheus.CounterVec
	RegistryDuration       *prometheus.HistogramVec
	StaleIndexReferences   prometheus.Counter
	AuthAttempts           *prometheus.CounterVec
	ChallengesIssued       prometheus.Counter
	ReconcileRepairedTotal prometheus.Counter
	RateLimited            prometheus.Counter
}

// New creates the metrics and registers them with reg.
// Passing a nil registerer creates unregistered collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistryOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ff_registry_operations_total",
			Help: "Total number of directory store operations by outcome",
		}, []string{"operation", "result"}),
		RegistryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ff_registry_operation_duration_seconds",
			Help:    "Duration of directory store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		StaleIndexReferences: factory.NewCounter(prometheus.CounterOpts{
			Name: "ff_registry_stale_index_references_total",
			Help: "Index references that did not resolve to a primary record",
		}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ff_registry_auth_attempts_total",
			Help: "Ownership authentication attempts by flow and outcome",
		}, []string{"flow", "result"}),
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "ff_registry_challenges_issued_total",
			Help: "Total number of challenges issued for destructive operations",
		}),
		ReconcileRepairedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ff_registry_reconcile_repaired_total",
			Help: "Index records rewritten by reconciliation runs",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "ff_registry_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		}),
	}
}

// ObserveOperation records the outcome and duration of a directory store operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.RegistryOperations.WithLabelValues(operation, Result(err)).Inc()
	m.RegistryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementStaleReference records an index reference that did not resolve
func (m *Metrics) IncrementStaleReference() {
	if m == nil {
		return
	}
	m.StaleIndexReferences.Inc()
}

// ObserveAuth records an authentication attempt
func (m *Metrics) ObserveAuth(flow string, err error) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(flow, Result(err)).Inc()
}

// IncrementChallengeIssued records a newly issued challenge
func (m *Metrics) IncrementChallengeIssued() {
	if m == nil {
		return
	}
	m.ChallengesIssued.Inc()
}

// AddRepaired records index records rewritten by a reconciliation run
func (m *Metrics) AddRepaired(n int) {
	if m == nil {
		return
	}
	m.ReconcileRepairedTotal.Add(float64(n))
}

// IncrementRateLimited records a request rejected by the rate limiter
func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// Result maps an error to a low-cardinality label value
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
