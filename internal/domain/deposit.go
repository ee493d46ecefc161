package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LenderDeposit struct {
	Lender      Address         `json:"lender"`
	Index       uint64          `json:"index"`
	Amount      decimal.Decimal `json:"amount"`
	DepositedAt time.Time       `json:"deposited_at"`
	LockUntil   time.Time       `json:"lock_until"`
	Withdrawn   bool            `json:"withdrawn"`
	WithdrawnAt time.Time       `json:"withdrawn_at"`
	Payout      decimal.Decimal `json:"payout"`
}

// Unlocked reports whether the lock has elapsed at now; lockUntil itself is unlocked.
func (d *LenderDeposit) Unlocked(now time.Time) bool {
	return !now.Before(d.LockUntil)
}
