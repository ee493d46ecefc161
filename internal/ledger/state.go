package ledger

import (
	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// state is everything the ledger owns. It is only mutated by effects produced
// inside commit, and it is what snapshots serialize.
type state struct {
	Seq        uint64             `json:"seq"`
	Collateral collateralRegistry `json:"collateral"`
	Auditors   auditorSet         `json:"auditors"`
	Token      creditToken        `json:"token"`
	Pool       liquidityPool      `json:"pool"`
	Loans      loanRegistry       `json:"loans"`
}

func newState() *state {
	return &state{
		Auditors: auditorSet{Members: map[domain.Address]bool{}},
		Token: creditToken{
			Balances:    map[domain.Address]decimal.Decimal{},
			Allowances:  map[domain.Address]map[domain.Address]decimal.Decimal{},
			TotalSupply: decimal.Zero,
		},
		Pool: liquidityPool{
			Balance:   decimal.Zero,
			Committed: decimal.Zero,
			Deposits:  map[domain.Address][]*domain.LenderDeposit{},
		},
	}
}

// normalize restores empty maps that JSON decoding leaves nil.
func (s *state) normalize() {
	if s.Auditors.Members == nil {
		s.Auditors.Members = map[domain.Address]bool{}
	}
	if s.Token.Balances == nil {
		s.Token.Balances = map[domain.Address]decimal.Decimal{}
	}
	if s.Token.Allowances == nil {
		s.Token.Allowances = map[domain.Address]map[domain.Address]decimal.Decimal{}
	}
	if s.Pool.Deposits == nil {
		s.Pool.Deposits = map[domain.Address][]*domain.LenderDeposit{}
	}
	for _, l := range s.Loans.Loans {
		if l.ApprovalsByAuditor == nil {
			l.ApprovalsByAuditor = map[domain.Address]bool{}
		}
	}
}
