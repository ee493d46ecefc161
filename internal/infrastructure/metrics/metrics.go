package metrics

import (
	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// LedgerMetrics holds every metric the ledger service exports.
type LedgerMetrics struct {
	// Commands
	OperationsTotal   *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Loans
	LoansRequestedTotal  prometheus.Counter
	LoanApprovalsTotal   prometheus.Counter
	LoansReleasedTotal   prometheus.Counter
	LoansRepaidTotal     prometheus.Counter
	CreditReleasedAmount prometheus.Counter
	RepaymentsAmount     prometheus.Counter

	// Pool and token
	PoolBalance      prometheus.Gauge
	AvailableReserve prometheus.Gauge
	CommittedReserve prometheus.Gauge
	TotalSupply      prometheus.Gauge
	DepositsTotal    prometheus.Counter
	WithdrawalsTotal prometheus.Counter

	// Background
	SnapshotsTotal  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	JournalSeq      prometheus.Gauge
}

// NewLedgerMetrics registers the metrics with reg. Pass
// prometheus.DefaultRegisterer in production.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	f := promauto.With(reg)
	return &LedgerMetrics{
		OperationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Committed ledger commands by kind",
			},
			[]string{"operation"},
		),
		OperationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operation_errors_total",
				Help: "Rejected ledger commands by kind and error class",
			},
			[]string{"operation", "class"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Time to validate, journal and apply a command",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"operation"},
		),

		LoansRequestedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loans_requested_total",
			Help: "Loans requested",
		}),
		LoanApprovalsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loan_approvals_total",
			Help: "Auditor approvals recorded",
		}),
		LoansReleasedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loans_released_total",
			Help: "Loans whose funds were released",
		}),
		LoansRepaidTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_loans_repaid_total",
			Help: "Loans repaid in full",
		}),
		CreditReleasedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_credit_released_amount_total",
			Help: "Credit units minted by releases",
		}),
		RepaymentsAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_repayments_amount_total",
			Help: "Credit units received in repayments, principal plus interest",
		}),

		PoolBalance: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_pool_balance",
			Help: "Cash held by the liquidity pool",
		}),
		AvailableReserve: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_available_reserve",
			Help: "Pool cash that can back new releases",
		}),
		CommittedReserve: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_committed_reserve",
			Help: "Reserve committed to released, unrepaid loans",
		}),
		TotalSupply: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_credit_total_supply",
			Help: "Outstanding credit token supply",
		}),
		DepositsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_deposits_total",
			Help: "Lender deposits made",
		}),
		WithdrawalsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "ledger_withdrawals_total",
			Help: "Lender deposits withdrawn",
		}),

		SnapshotsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_snapshots_total",
				Help: "Snapshot attempts by result",
			},
			[]string{"result"},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_events_published_total",
				Help: "Events handed to the broker by result",
			},
			[]string{"result"},
		),
		JournalSeq: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_journal_seq",
			Help: "Sequence number of the last committed command",
		}),
	}
}

// ObserveEvents updates the business counters from committed events.
func (m *LedgerMetrics) ObserveEvents(events []domain.Event) {
	for _, e := range events {
		switch e.Type {
		case domain.EventLoanRequested:
			m.LoansRequestedTotal.Inc()
		case domain.EventLoanApproved:
			m.LoanApprovalsTotal.Inc()
		case domain.EventFundsReleased:
			m.LoansReleasedTotal.Inc()
			m.CreditReleasedAmount.Add(toFloat(e.Amount))
		case domain.EventRepaymentReceived:
			m.LoansRepaidTotal.Inc()
			m.RepaymentsAmount.Add(toFloat(e.Amount))
		case domain.EventDepositMade:
			m.DepositsTotal.Inc()
		case domain.EventDepositWithdrawn:
			m.WithdrawalsTotal.Inc()
		}
	}
}

// SetBalances publishes the ledger's headline figures.
func (m *LedgerMetrics) SetBalances(seq uint64, pool, available, committed, supply decimal.Decimal) {
	m.JournalSeq.Set(float64(seq))
	m.PoolBalance.Set(pool.InexactFloat64())
	m.AvailableReserve.Set(available.InexactFloat64())
	m.CommittedReserve.Set(committed.InexactFloat64())
	m.TotalSupply.Set(supply.InexactFloat64())
}

func toFloat(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}
