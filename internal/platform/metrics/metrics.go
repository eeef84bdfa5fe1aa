package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger core.
type Metrics struct {
	// Posting metrics
	EntriesPosted   prometheus.Counter
	EntriesReversed prometheus.Counter
	PostingErrors   *prometheus.CounterVec
	PostingRetries  prometheus.Counter
	BatchesPosted   prometheus.Counter
	BatchFailures   prometheus.Counter

	// Period metrics
	PeriodsClosed   prometheus.Counter
	PeriodsReopened prometheus.Counter

	// Reconciliation metrics
	ReconciliationVariances prometheus.Counter
}

// New creates and registers all metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EntriesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_posted_total",
			Help: "Total number of ledger entries posted",
		}),
		EntriesReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_reversed_total",
			Help: "Total number of ledger entries reversed",
		}),
		PostingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_posting_errors_total",
			Help: "Total posting failures by error kind",
		}, []string{"kind"}),
		PostingRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_posting_retries_total",
			Help: "Total optimistic-lock retries on balance updates",
		}),
		BatchesPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_batches_posted_total",
			Help: "Total batch posting operations completed",
		}),
		BatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_batch_failures_total",
			Help: "Total batch posting operations with at least one failure",
		}),
		PeriodsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_periods_closed_total",
			Help: "Total accounting periods closed",
		}),
		PeriodsReopened: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_periods_reopened_total",
			Help: "Total accounting periods reopened",
		}),
		ReconciliationVariances: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_variances_total",
			Help: "Total reconciliations that observed a non-zero variance",
		}),
	}
}

// NewNop creates metrics on a private registry, for tests and local runs.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
