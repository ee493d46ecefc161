package ledger

import (
	"fmt"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// liquidityPool holds lender cash. Balance is cash on hand; Committed is the
// reserve backing released, unrepaid loans.
type liquidityPool struct {
	Balance   decimal.Decimal                            `json:"balance"`
	Committed decimal.Decimal                            `json:"committed"`
	Deposits  map[domain.Address][]*domain.LenderDeposit `json:"deposits"`
}

func (p *liquidityPool) deposit(lender domain.Address, amount decimal.Decimal, now, lockUntil time.Time) *domain.LenderDeposit {
	d := &domain.LenderDeposit{
		Lender:      lender,
		Index:       uint64(len(p.Deposits[lender])),
		Amount:      amount,
		DepositedAt: now,
		LockUntil:   lockUntil,
		Payout:      decimal.Zero,
	}
	p.Deposits[lender] = append(p.Deposits[lender], d)
	p.Balance = p.Balance.Add(amount)
	return d
}

func (p *liquidityPool) get(lender domain.Address, index uint64) (*domain.LenderDeposit, error) {
	deposits := p.Deposits[lender]
	if index >= uint64(len(deposits)) {
		return nil, fmt.Errorf("deposit %s/%d: %w", lender, index, domain.ErrDepositNotFound)
	}
	return deposits[index], nil
}

func accruedOn(d *domain.LenderDeposit, aprBps uint32, now time.Time) (decimal.Decimal, error) {
	elapsed := int64(now.Sub(d.DepositedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	interest, err := domain.SimpleInterest(d.Amount, aprBps, elapsed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("deposit %s/%d interest: %w", d.Lender, d.Index, err)
	}
	return interest, nil
}

// checkWithdraw returns the payout a withdrawal at now would make.
func (p *liquidityPool) checkWithdraw(d *domain.LenderDeposit, aprBps uint32, now time.Time) (decimal.Decimal, error) {
	if d.Withdrawn {
		return decimal.Zero, fmt.Errorf("deposit %s/%d: %w", d.Lender, d.Index, domain.ErrAlreadyWithdrawn)
	}
	if !d.Unlocked(now) {
		return decimal.Zero, fmt.Errorf("deposit %s/%d locked until %s: %w", d.Lender, d.Index, d.LockUntil.UTC().Format(time.RFC3339), domain.ErrStillLocked)
	}
	interest, err := accruedOn(d, aprBps, now)
	if err != nil {
		return decimal.Zero, err
	}
	payout := d.Amount.Add(interest)
	if p.Balance.LessThan(payout) {
		return decimal.Zero, fmt.Errorf("payout %s exceeds pool balance %s: %w", payout, p.Balance, domain.ErrReserveShortfall)
	}
	return payout, nil
}

func (p *liquidityPool) withdraw(d *domain.LenderDeposit, payout decimal.Decimal, now time.Time) {
	d.Withdrawn = true
	d.WithdrawnAt = now
	d.Payout = payout
	p.Balance = p.Balance.Sub(payout)
}

func (p *liquidityPool) seed(amount decimal.Decimal) {
	p.Balance = p.Balance.Add(amount)
}

// interestLiability is the interest accrued so far on every open deposit.
func (p *liquidityPool) interestLiability(aprBps uint32, now time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, deposits := range p.Deposits {
		for _, d := range deposits {
			if d.Withdrawn {
				continue
			}
			interest, err := accruedOn(d, aprBps, now)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(interest)
		}
	}
	return total, nil
}

// available is cash on hand, less interest owed to lenders, less reserve
// already committed to released loans. Never negative.
func (p *liquidityPool) available(aprBps uint32, now time.Time) (decimal.Decimal, error) {
	liability, err := p.interestLiability(aprBps, now)
	if err != nil {
		return decimal.Zero, err
	}
	free := p.Balance.Sub(liability).Sub(p.Committed)
	if free.IsNegative() {
		return decimal.Zero, nil
	}
	return free, nil
}

func (p *liquidityPool) commit(amount decimal.Decimal) {
	p.Committed = p.Committed.Add(amount)
}

func (p *liquidityPool) uncommit(amount decimal.Decimal) {
	p.Committed = p.Committed.Sub(amount)
	if p.Committed.IsNegative() {
		p.Committed = decimal.Zero
	}
}
