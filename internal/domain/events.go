package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAssetMinted        EventType = "asset-minted"
	EventAssetTransferred   EventType = "asset-transferred"
	EventAssetVerified      EventType = "asset-verified"
	EventCollateralPledged  EventType = "collateral-pledged"
	EventCollateralReleased EventType = "collateral-released"
	EventAuditorChanged     EventType = "auditor-changed"
	EventLoanRequested      EventType = "loan-requested"
	EventLoanApproved       EventType = "loan-approved"
	EventFundsReleased      EventType = "funds-released"
	EventRepaymentReceived  EventType = "repayment-received"
	EventDepositMade        EventType = "deposit-made"
	EventDepositWithdrawn   EventType = "deposit-withdrawn"
	EventCapitalSeeded      EventType = "capital-seeded"
	EventCreditTransferred  EventType = "credit-transferred"
)

// Event is an outbound notification about a committed state change.
// It carries the entity id and the post-mutation summary fields.
type Event struct {
	Seq           uint64           `json:"seq"`
	Type          EventType        `json:"type"`
	At            time.Time        `json:"at"`
	LoanID        *uint64          `json:"loan_id,omitempty"`
	AssetID       *uint64          `json:"asset_id,omitempty"`
	DepositIndex  *uint64          `json:"deposit_index,omitempty"`
	Account       Address          `json:"account,omitempty"`
	Counterparty  Address          `json:"counterparty,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	ApprovalCount *uint32          `json:"approval_count,omitempty"`
	Enabled       *bool            `json:"enabled,omitempty"`
}

// EventSink receives committed events after the ledger lock is released, one
// batch per command, in commit order. A batch may be delivered by a goroutine
// other than the one that committed it.
type EventSink interface {
	Dispatch(events []Event)
}
