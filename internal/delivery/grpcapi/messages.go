package grpcapi

// Request messages of the ledger service. The acting address is never part
// of a request: it is the subject of the caller's bearer token.

type MintAssetRequest struct {
	Owner       string `json:"owner"`
	MetadataURI string `json:"metadata_uri"`
	Name        string `json:"name"`
	Valuation   string `json:"valuation"`
	AssetClass  string `json:"asset_class"`
	LocationTag string `json:"location_tag"`
}

type ApproveAssetRequest struct {
	AssetID  uint64 `json:"asset_id"`
	Operator string `json:"operator"`
}

type TransferAssetRequest struct {
	AssetID uint64 `json:"asset_id"`
	To      string `json:"to"`
}

type SetAssetVerifiedRequest struct {
	AssetID  uint64 `json:"asset_id"`
	Verified bool   `json:"verified"`
}

type PledgeAssetRequest struct {
	AssetID   uint64 `json:"asset_id"`
	Custodian string `json:"custodian"`
}

type ReleaseAssetRequest struct {
	AssetID uint64 `json:"asset_id"`
}

type SetAuditorRequest struct {
	Auditor string `json:"auditor"`
	Enabled bool   `json:"enabled"`
}

type RequestLoanRequest struct {
	AssetID         uint64 `json:"asset_id"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	InterestRateBps uint32 `json:"interest_rate_bps"`
	LeverageRatio   uint32 `json:"leverage_ratio"`
}

type ApproveLoanRequest struct {
	LoanID          uint64 `json:"loan_id"`
	InterestRateBps uint32 `json:"interest_rate_bps"`
	LeverageRatio   uint32 `json:"leverage_ratio"`
}

type LoanRequest struct {
	LoanID uint64 `json:"loan_id"`
}

type DepositLiquidityRequest struct {
	Amount      string `json:"amount"`
	LockSeconds int64  `json:"lock_seconds"`
}

type WithdrawLiquidityRequest struct {
	Index uint64 `json:"index"`
}

type SeedCapitalRequest struct {
	Amount string `json:"amount"`
}

type ApproveCreditRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type TransferCreditRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type TransferCreditFromRequest struct {
	Owner  string `json:"owner"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}
