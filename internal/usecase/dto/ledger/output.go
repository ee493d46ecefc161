package ledgerdto

import "time"

type ReceiptOutput struct {
	Seq    uint64 `json:"seq"`
	ID     uint64 `json:"id"`
	Amount string `json:"amount,omitempty"`
}

type LoanOutput struct {
	ID                 uint64     `json:"id"`
	Borrower           string     `json:"borrower"`
	CollateralAssetID  uint64     `json:"collateral_asset_id"`
	RequestedAmount    string     `json:"requested_amount"`
	InterestRateBps    uint32     `json:"interest_rate_bps"`
	LeverageRatio      uint32     `json:"leverage_ratio"`
	TermsFixed         bool       `json:"terms_fixed"`
	Description        string     `json:"description"`
	Approvers          []string   `json:"approvers"`
	ApprovalCount      uint32     `json:"approval_count"`
	Status             string     `json:"status"`
	IsReleased         bool       `json:"is_released"`
	IsRepaid           bool       `json:"is_repaid"`
	RequestedAt        time.Time  `json:"requested_at"`
	StartTime          *time.Time `json:"start_time,omitempty"`
	ReserveRequirement string     `json:"reserve_requirement,omitempty"`
	AmountOwed         string     `json:"amount_owed,omitempty"`
	RepaidAt           *time.Time `json:"repaid_at,omitempty"`
	RepaidAmount       string     `json:"repaid_amount,omitempty"`
}

type LoansOutput struct {
	Loans []*LoanOutput `json:"loans"`
	Total int           `json:"total"`
}

type AssetOutput struct {
	ID            uint64    `json:"id"`
	Owner         string    `json:"owner"`
	MetadataURI   string    `json:"metadata_uri"`
	DisplayName   string    `json:"display_name"`
	Valuation     string    `json:"valuation"`
	AssetClass    string    `json:"asset_class"`
	LocationTag   string    `json:"location_tag"`
	Verified      bool      `json:"verified"`
	CustodyHolder string    `json:"custody_holder,omitempty"`
	Approved      string    `json:"approved,omitempty"`
	ActiveLoanID  *uint64   `json:"active_loan_id,omitempty"`
	MintedAt      time.Time `json:"minted_at"`
}

type DepositOutput struct {
	Lender      string     `json:"lender"`
	Index       uint64     `json:"index"`
	Amount      string     `json:"amount"`
	DepositedAt time.Time  `json:"deposited_at"`
	LockUntil   time.Time  `json:"lock_until"`
	Withdrawn   bool       `json:"withdrawn"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`
	Payout      string     `json:"payout,omitempty"`
}

type DepositCountOutput struct {
	Lender string `json:"lender"`
	Count  uint64 `json:"count"`
}

type AuditorOutput struct {
	Address   string `json:"address"`
	IsAuditor bool   `json:"is_auditor"`
	Threshold uint32 `json:"threshold"`
}

type ReserveOutput struct {
	Seq               uint64 `json:"seq"`
	PoolBalance       string `json:"pool_balance"`
	AvailableReserve  string `json:"available_reserve"`
	CommittedReserve  string `json:"committed_reserve"`
	TotalSupply       string `json:"total_supply"`
	ApprovalThreshold uint32 `json:"approval_threshold"`
}

type SupplyOutput struct {
	TotalSupply string `json:"total_supply"`
}

type BalanceOutput struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

type AllowanceOutput struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}
