package publisher

import (
	"strconv"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/google/uuid"
)

// LedgerEvent is the wire form of a committed ledger event on the
// ledger-events topic. Amounts travel as decimal strings.
type LedgerEvent struct {
	EventID       string    `json:"event_id"`
	Seq           uint64    `json:"seq"`
	Type          string    `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	LoanID        *uint64   `json:"loan_id,omitempty"`
	AssetID       *uint64   `json:"asset_id,omitempty"`
	DepositIndex  *uint64   `json:"deposit_index,omitempty"`
	Account       string    `json:"account,omitempty"`
	Counterparty  string    `json:"counterparty,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	ApprovalCount *uint32   `json:"approval_count,omitempty"`
	Enabled       *bool     `json:"enabled,omitempty"`
}

func NewLedgerEvent(e domain.Event) LedgerEvent {
	out := LedgerEvent{
		EventID:       uuid.New().String(),
		Seq:           e.Seq,
		Type:          string(e.Type),
		OccurredAt:    e.At.UTC(),
		LoanID:        e.LoanID,
		AssetID:       e.AssetID,
		DepositIndex:  e.DepositIndex,
		Account:       e.Account.String(),
		Counterparty:  e.Counterparty.String(),
		ApprovalCount: e.ApprovalCount,
		Enabled:       e.Enabled,
	}
	if e.Amount != nil {
		out.Amount = e.Amount.String()
	}
	return out
}

// PartitionKey keeps every event about one loan (or one asset) on one partition.
func (e LedgerEvent) PartitionKey() string {
	switch {
	case e.LoanID != nil:
		return "loan-" + strconv.FormatUint(*e.LoanID, 10)
	case e.AssetID != nil:
		return "asset-" + strconv.FormatUint(*e.AssetID, 10)
	}
	return e.Account
}
