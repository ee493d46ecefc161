package ledger

import (
	"fmt"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type loanRegistry struct {
	Loans []*domain.Loan `json:"loans"`
}

func (r *loanRegistry) get(id uint64) (*domain.Loan, error) {
	if id >= uint64(len(r.Loans)) {
		return nil, fmt.Errorf("loan %d: %w", id, domain.ErrLoanNotFound)
	}
	return r.Loans[id], nil
}

func (r *loanRegistry) nextID() uint64 {
	return uint64(len(r.Loans))
}

// checkLeverage enforces requested <= valuation * leverage.
func checkLeverage(requested, valuation decimal.Decimal, leverage uint32) error {
	limit := valuation.Mul(decimal.NewFromInt(int64(leverage)))
	if requested.GreaterThan(limit) {
		return fmt.Errorf("requested %s exceeds %s at %dx: %w", requested, limit, leverage, domain.ErrLeverageExceeded)
	}
	return nil
}

func (tx *txn) checkTerms(requested, valuation decimal.Decimal, rateBps, leverage uint32) error {
	if leverage == 0 {
		return fmt.Errorf("leverage must be at least 1: %w", domain.ErrInvalidTerms)
	}
	if leverage > tx.p.MaxLeverage {
		return fmt.Errorf("leverage %dx above cap %dx: %w", leverage, tx.p.MaxLeverage, domain.ErrLeverageExceeded)
	}
	if rateBps > tx.p.MaxInterestRateBps {
		return fmt.Errorf("rate %d bps above cap %d bps: %w", rateBps, tx.p.MaxInterestRateBps, domain.ErrInvalidTerms)
	}
	return checkLeverage(requested, valuation, leverage)
}

// requestTerms resolves the terms a new loan starts with under the configured policy.
func (tx *txn) requestTerms(c RequestLoan, valuation decimal.Decimal) (rate, leverage uint32, fixed bool, err error) {
	switch tx.p.TermsPolicy {
	case TermsSetByFirstApprover:
		if c.InterestRateBps != 0 || c.LeverageRatio != 0 {
			return 0, 0, false, fmt.Errorf("terms are set by the first approver: %w", domain.ErrInvalidTerms)
		}
		return 0, 0, false, checkLeverage(c.Amount, valuation, tx.p.MaxLeverage)
	default:
		leverage = c.LeverageRatio
		if leverage == 0 {
			leverage = tx.p.MaxLeverage
		}
		if err := tx.checkTerms(c.Amount, valuation, c.InterestRateBps, leverage); err != nil {
			return 0, 0, false, err
		}
		return c.InterestRateBps, leverage, true, nil
	}
}

// approvalTerms validates terms supplied with an approval. Once fixed, terms
// may be repeated but never changed.
func (tx *txn) approvalTerms(loan *domain.Loan, valuation decimal.Decimal, rateBps, leverage uint32) error {
	if loan.TermsFixed {
		if (rateBps != 0 && rateBps != loan.InterestRateBps) || (leverage != 0 && leverage != loan.LeverageRatio) {
			return fmt.Errorf("loan %d terms are final: %w", loan.ID, domain.ErrInvalidTerms)
		}
		return nil
	}
	return tx.checkTerms(loan.RequestedAmount, valuation, rateBps, leverage)
}

func (r *loanRegistry) count() int {
	return len(r.Loans)
}
