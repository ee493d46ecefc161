package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanRequested         LoanStatus = "REQUESTED"
	LoanPartiallyApproved LoanStatus = "PARTIALLY_APPROVED"
	LoanQuorumReached     LoanStatus = "QUORUM_REACHED"
	LoanReleased          LoanStatus = "RELEASED"
	LoanRepaid            LoanStatus = "REPAID"
)

type Loan struct {
	ID                 uint64           `json:"id"`
	Borrower           Address          `json:"borrower"`
	CollateralAssetID  uint64           `json:"collateral_asset_id"`
	RequestedAmount    decimal.Decimal  `json:"requested_amount"`
	InterestRateBps    uint32           `json:"interest_rate_bps"`
	LeverageRatio      uint32           `json:"leverage_ratio"`
	TermsFixed         bool             `json:"terms_fixed"`
	Description        string           `json:"description"`
	ApprovalsByAuditor map[Address]bool `json:"approvals_by_auditor"`
	ApprovalCount      uint32           `json:"approval_count"`
	IsReleased         bool             `json:"is_released"`
	IsRepaid           bool             `json:"is_repaid"`
	RequestedAt        time.Time        `json:"requested_at"`
	StartTime          time.Time        `json:"start_time"`
	ReserveRequirement decimal.Decimal  `json:"reserve_requirement"`
	RepaidAt           time.Time        `json:"repaid_at"`
	RepaidAmount       decimal.Decimal  `json:"repaid_amount"`
}

// Status derives the lifecycle state for the given approval threshold.
func (l *Loan) Status(threshold uint32) LoanStatus {
	switch {
	case l.IsRepaid:
		return LoanRepaid
	case l.IsReleased:
		return LoanReleased
	case l.ApprovalCount >= threshold:
		return LoanQuorumReached
	case l.ApprovalCount > 0:
		return LoanPartiallyApproved
	}
	return LoanRequested
}

// Active reports whether the loan still holds its collateral.
func (l *Loan) Active() bool {
	return !l.IsRepaid
}

// Clone returns a deep copy safe to hand out of the ledger.
func (l *Loan) Clone() *Loan {
	c := *l
	c.ApprovalsByAuditor = make(map[Address]bool, len(l.ApprovalsByAuditor))
	for k, v := range l.ApprovalsByAuditor {
		c.ApprovalsByAuditor[k] = v
	}
	return &c
}
