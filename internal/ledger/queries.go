package ledger

import (
	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Read-only views. Everything returned is a copy.

func (l *Ledger) Loan(id uint64) (*domain.Loan, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	loan, err := l.state.Loans.get(id)
	if err != nil {
		return nil, err
	}
	return loan.Clone(), nil
}

// Loans pages through loans in id order.
func (l *Ledger) Loans(offset, limit int) []*domain.Loan {
	l.mu.RLock()
	defer l.mu.RUnlock()
	all := l.state.Loans.Loans
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []*domain.Loan{}
	}
	end := len(all)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	out := make([]*domain.Loan, 0, end-offset)
	for _, loan := range all[offset:end] {
		out = append(out, loan.Clone())
	}
	return out
}

func (l *Ledger) LoanCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Loans.count()
}

func (l *Ledger) LoanStatus(id uint64) (domain.LoanStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	loan, err := l.state.Loans.get(id)
	if err != nil {
		return "", err
	}
	return loan.Status(l.params.ApprovalThreshold), nil
}

// AmountOwed is principal plus interest accrued up to now for a released loan.
func (l *Ledger) AmountOwed(id uint64) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	loan, err := l.state.Loans.get(id)
	if err != nil {
		return decimal.Zero, err
	}
	if !loan.IsReleased {
		return decimal.Zero, domain.ErrLoanNotReleased
	}
	if loan.IsRepaid {
		return loan.RepaidAmount, nil
	}
	elapsed := int64(l.clock.Now().Sub(loan.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	interest, err := domain.SimpleInterest(loan.RequestedAmount, loan.InterestRateBps, elapsed)
	if err != nil {
		return decimal.Zero, err
	}
	return loan.RequestedAmount.Add(interest), nil
}

func (l *Ledger) Asset(id uint64) (*domain.CollateralAsset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, err := l.state.Collateral.get(id)
	if err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

func (l *Ledger) DepositCount(lender domain.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.state.Pool.Deposits[lender]))
}

func (l *Ledger) Deposit(lender domain.Address, index uint64) (*domain.LenderDeposit, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	d, err := l.state.Pool.get(lender, index)
	if err != nil {
		return nil, err
	}
	c := *d
	return &c, nil
}

func (l *Ledger) IsAuditor(addr domain.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Auditors.isAuditor(addr)
}

func (l *Ledger) Threshold() uint32 {
	return l.params.ApprovalThreshold
}

// AvailableReserve is the pool cash that can still back new releases.
// Accrual only fails for a negative principal, which deposit rejects, so an
// error here means corrupted state and the reserve reads as zero.
func (l *Ledger) AvailableReserve() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	free, err := l.state.Pool.available(l.params.LenderAPRBps, l.clock.Now())
	if err != nil {
		return decimal.Zero
	}
	return free
}

func (l *Ledger) PoolBalance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Pool.Balance
}

func (l *Ledger) CommittedReserve() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Pool.Committed
}

func (l *Ledger) TotalSupply() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Token.TotalSupply
}

func (l *Ledger) BalanceOf(owner domain.Address) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Token.balanceOf(owner)
}

func (l *Ledger) Allowance(owner, spender domain.Address) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Token.allowance(owner, spender)
}

func (l *Ledger) Seq() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Seq
}
