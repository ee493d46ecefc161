package ledger

import (
	"fmt"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// creditToken is the issued unit of account. Only the release path mints.
type creditToken struct {
	Balances    map[domain.Address]decimal.Decimal                    `json:"balances"`
	Allowances  map[domain.Address]map[domain.Address]decimal.Decimal `json:"allowances"`
	TotalSupply decimal.Decimal                                       `json:"total_supply"`
}

func (t *creditToken) balanceOf(owner domain.Address) decimal.Decimal {
	if b, ok := t.Balances[owner]; ok {
		return b
	}
	return decimal.Zero
}

func (t *creditToken) allowance(owner, spender domain.Address) decimal.Decimal {
	if a, ok := t.Allowances[owner][spender]; ok {
		return a
	}
	return decimal.Zero
}

func (t *creditToken) setBalance(owner domain.Address, v decimal.Decimal) {
	if v.IsZero() {
		delete(t.Balances, owner)
		return
	}
	t.Balances[owner] = v
}

func (t *creditToken) approve(owner, spender domain.Address, amount decimal.Decimal) {
	if amount.IsZero() {
		delete(t.Allowances[owner], spender)
		if len(t.Allowances[owner]) == 0 {
			delete(t.Allowances, owner)
		}
		return
	}
	if t.Allowances[owner] == nil {
		t.Allowances[owner] = map[domain.Address]decimal.Decimal{}
	}
	t.Allowances[owner][spender] = amount
}

func (t *creditToken) checkBalance(owner domain.Address, amount decimal.Decimal) error {
	if t.balanceOf(owner).LessThan(amount) {
		return fmt.Errorf("%s holds %s, needs %s: %w", owner, t.balanceOf(owner), amount, domain.ErrInsufficientBalance)
	}
	return nil
}

// checkSpend validates that spender may move amount out of owner's balance.
func (t *creditToken) checkSpend(owner, spender domain.Address, amount decimal.Decimal) error {
	if owner != spender && t.allowance(owner, spender).LessThan(amount) {
		return fmt.Errorf("%s allows %s %s, needs %s: %w", owner, spender, t.allowance(owner, spender), amount, domain.ErrInsufficientAllowance)
	}
	return t.checkBalance(owner, amount)
}

func (t *creditToken) spendAllowance(owner, spender domain.Address, amount decimal.Decimal) {
	if owner == spender {
		return
	}
	t.approve(owner, spender, t.allowance(owner, spender).Sub(amount))
}

func (t *creditToken) move(from, to domain.Address, amount decimal.Decimal) {
	t.setBalance(from, t.balanceOf(from).Sub(amount))
	t.setBalance(to, t.balanceOf(to).Add(amount))
}

func (t *creditToken) transferFrom(owner, spender, to domain.Address, amount decimal.Decimal) {
	t.spendAllowance(owner, spender, amount)
	t.move(owner, to, amount)
}

func (t *creditToken) mint(to domain.Address, amount decimal.Decimal) {
	t.setBalance(to, t.balanceOf(to).Add(amount))
	t.TotalSupply = t.TotalSupply.Add(amount)
}

func (t *creditToken) burnFrom(owner, spender domain.Address, amount decimal.Decimal) {
	t.spendAllowance(owner, spender, amount)
	t.setBalance(owner, t.balanceOf(owner).Sub(amount))
	t.TotalSupply = t.TotalSupply.Sub(amount)
}
