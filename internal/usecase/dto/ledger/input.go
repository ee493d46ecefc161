package ledgerdto

// Addresses and amounts arrive as strings and are parsed by the usecase.

type MintAssetInput struct {
	Caller      string
	Owner       string
	MetadataURI string
	Name        string
	Valuation   string
	AssetClass  string
	LocationTag string
}

type ApproveAssetInput struct {
	Caller   string
	AssetID  uint64
	Operator string
}

type TransferAssetInput struct {
	Caller  string
	AssetID uint64
	To      string
}

type SetAssetVerifiedInput struct {
	Caller   string
	AssetID  uint64
	Verified bool
}

type PledgeAssetInput struct {
	Caller    string
	AssetID   uint64
	Custodian string
}

type ReleaseAssetInput struct {
	Caller  string
	AssetID uint64
}

type SetAuditorInput struct {
	Caller  string
	Auditor string
	Enabled bool
}

type RequestLoanInput struct {
	Borrower        string
	AssetID         uint64
	Amount          string
	Description     string
	InterestRateBps uint32
	LeverageRatio   uint32
}

type ApproveLoanInput struct {
	Auditor         string
	LoanID          uint64
	InterestRateBps uint32
	LeverageRatio   uint32
}

type ReleaseFundsInput struct {
	Caller string
	LoanID uint64
}

type RepayLoanInput struct {
	Caller string
	LoanID uint64
}

type DepositLiquidityInput struct {
	Lender      string
	Amount      string
	LockSeconds int64
}

type WithdrawLiquidityInput struct {
	Lender string
	Index  uint64
}

type SeedCapitalInput struct {
	Caller string
	Amount string
}

type ApproveCreditInput struct {
	Owner   string
	Spender string
	Amount  string
}

type TransferCreditInput struct {
	From   string
	To     string
	Amount string
}

type TransferCreditFromInput struct {
	Spender string
	Owner   string
	To      string
	Amount  string
}

type ListLoansInput struct {
	Offset int
	Limit  int
}
