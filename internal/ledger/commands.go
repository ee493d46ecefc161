package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Command is one inbound ledger call. Commands are journaled as JSON and
// replayed through the same plan/apply path on restore.
type Command interface {
	Kind() string
	caller() domain.Address
	plan(tx *txn) (effect, error)
}

const (
	KindMintAsset          = "mint_asset"
	KindApproveAsset       = "approve_asset"
	KindTransferAsset      = "transfer_asset"
	KindSetAssetVerified   = "set_asset_verified"
	KindPledgeAsset        = "pledge_asset"
	KindReleaseAsset       = "release_asset"
	KindSetAuditor         = "set_auditor"
	KindRequestLoan        = "request_loan"
	KindApproveLoan        = "approve_loan"
	KindReleaseFunds       = "release_funds"
	KindRepayLoan          = "repay_loan"
	KindDepositLiquidity   = "deposit_liquidity"
	KindWithdrawLiquidity  = "withdraw_liquidity"
	KindSeedCapital        = "seed_capital"
	KindApproveCredit      = "approve_credit"
	KindTransferCredit     = "transfer_credit"
	KindTransferCreditFrom = "transfer_credit_from"
)

var commandFactories = map[string]func() Command{
	KindMintAsset:          func() Command { return &MintAsset{} },
	KindApproveAsset:       func() Command { return &ApproveAsset{} },
	KindTransferAsset:      func() Command { return &TransferAsset{} },
	KindSetAssetVerified:   func() Command { return &SetAssetVerified{} },
	KindPledgeAsset:        func() Command { return &PledgeAsset{} },
	KindReleaseAsset:       func() Command { return &ReleaseAsset{} },
	KindSetAuditor:         func() Command { return &SetAuditor{} },
	KindRequestLoan:        func() Command { return &RequestLoan{} },
	KindApproveLoan:        func() Command { return &ApproveLoan{} },
	KindReleaseFunds:       func() Command { return &ReleaseFunds{} },
	KindRepayLoan:          func() Command { return &RepayLoan{} },
	KindDepositLiquidity:   func() Command { return &DepositLiquidity{} },
	KindWithdrawLiquidity:  func() Command { return &WithdrawLiquidity{} },
	KindSeedCapital:        func() Command { return &SeedCapital{} },
	KindApproveCredit:      func() Command { return &ApproveCredit{} },
	KindTransferCredit:     func() Command { return &TransferCredit{} },
	KindTransferCreditFrom: func() Command { return &TransferCreditFrom{} },
}

func DecodeCommand(kind string, payload []byte) (Command, error) {
	factory, ok := commandFactories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown command kind %q", kind)
	}
	cmd := factory()
	if err := json.Unmarshal(payload, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func u64(v uint64) *uint64                   { return &v }
func u32(v uint32) *uint32                   { return &v }
func amt(v decimal.Decimal) *decimal.Decimal { return &v }

func requireAddress(addrs ...domain.Address) error {
	for _, a := range addrs {
		if a.IsZero() {
			return domain.ErrInvalidAddress
		}
	}
	return nil
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() || !domain.IsRepresentable(amount) {
		return fmt.Errorf("%s: %w", amount.String(), domain.ErrInvalidAmount)
	}
	return nil
}

func (tx *txn) requireAdmin(caller domain.Address) error {
	if caller != tx.p.Admin {
		return fmt.Errorf("%s is not the administrator: %w", caller, domain.ErrUnauthorized)
	}
	return nil
}

////////////////////////////// Collateral //////////////////////////////

type MintAsset struct {
	Caller      domain.Address    `json:"caller"`
	Owner       domain.Address    `json:"owner"`
	MetadataURI string            `json:"metadata_uri"`
	Name        string            `json:"name"`
	Valuation   decimal.Decimal   `json:"valuation"`
	AssetClass  domain.AssetClass `json:"asset_class"`
	LocationTag string            `json:"location_tag"`
}

func (c MintAsset) Kind() string           { return KindMintAsset }
func (c MintAsset) caller() domain.Address { return c.Caller }

func (c MintAsset) plan(tx *txn) (effect, error) {
	if err := tx.requireAdmin(c.Caller); err != nil {
		return nil, err
	}
	if err := requireAddress(c.Owner); err != nil {
		return nil, err
	}
	if err := checkValuation(c.Valuation); err != nil {
		return nil, err
	}
	class := c.AssetClass
	if class == "" {
		class = domain.AssetClassHardware
	}
	if !class.Valid() {
		return nil, fmt.Errorf("%q: %w", c.AssetClass, domain.ErrInvalidAssetClass)
	}
	return func() (Receipt, []domain.Event) {
		a := tx.Collateral.mint(domain.CollateralAsset{
			Owner:       c.Owner,
			MetadataURI: c.MetadataURI,
			DisplayName: c.Name,
			Valuation:   c.Valuation,
			AssetClass:  class,
			LocationTag: c.LocationTag,
		}, tx.now)
		return Receipt{ID: a.ID, Amount: a.Valuation}, []domain.Event{{
			Type:    domain.EventAssetMinted,
			AssetID: u64(a.ID),
			Account: a.Owner,
			Amount:  amt(a.Valuation),
		}}
	}, nil
}

type ApproveAsset struct {
	Caller   domain.Address `json:"caller"`
	AssetID  uint64         `json:"asset_id"`
	Operator domain.Address `json:"operator"`
}

func (c ApproveAsset) Kind() string           { return KindApproveAsset }
func (c ApproveAsset) caller() domain.Address { return c.Caller }

func (c ApproveAsset) plan(tx *txn) (effect, error) {
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.Collateral.checkApprove(a, c.Caller); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Collateral.approve(a, c.Operator)
		return Receipt{ID: a.ID}, nil
	}, nil
}

type TransferAsset struct {
	Caller  domain.Address `json:"caller"`
	AssetID uint64         `json:"asset_id"`
	To      domain.Address `json:"to"`
}

func (c TransferAsset) Kind() string           { return KindTransferAsset }
func (c TransferAsset) caller() domain.Address { return c.Caller }

func (c TransferAsset) plan(tx *txn) (effect, error) {
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.Collateral.checkTransfer(a, c.Caller, c.To); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Collateral.transfer(a, c.To)
		return Receipt{ID: a.ID}, []domain.Event{{
			Type:         domain.EventAssetTransferred,
			AssetID:      u64(a.ID),
			Account:      c.Caller,
			Counterparty: c.To,
		}}
	}, nil
}

type SetAssetVerified struct {
	Caller   domain.Address `json:"caller"`
	AssetID  uint64         `json:"asset_id"`
	Verified bool           `json:"verified"`
}

func (c SetAssetVerified) Kind() string           { return KindSetAssetVerified }
func (c SetAssetVerified) caller() domain.Address { return c.Caller }

func (c SetAssetVerified) plan(tx *txn) (effect, error) {
	if err := tx.requireAdmin(c.Caller); err != nil {
		return nil, err
	}
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		a.Verified = c.Verified
		verified := c.Verified
		return Receipt{ID: a.ID}, []domain.Event{{
			Type:    domain.EventAssetVerified,
			AssetID: u64(a.ID),
			Account: a.Owner,
			Enabled: &verified,
		}}
	}, nil
}

// PledgeAsset hands custody to a third-party custodian. Vault custody is only
// ever taken by RequestLoan, which ties it to a loan.
type PledgeAsset struct {
	Caller    domain.Address `json:"caller"`
	AssetID   uint64         `json:"asset_id"`
	Custodian domain.Address `json:"custodian"`
}

func (c PledgeAsset) Kind() string           { return KindPledgeAsset }
func (c PledgeAsset) caller() domain.Address { return c.Caller }

func (c PledgeAsset) plan(tx *txn) (effect, error) {
	if c.Custodian == tx.p.Vault {
		return nil, fmt.Errorf("vault custody requires a loan request: %w", domain.ErrUnauthorized)
	}
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.Collateral.checkPledge(a, c.Caller, c.Custodian); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Collateral.pledge(a, c.Custodian)
		return Receipt{ID: a.ID}, []domain.Event{{
			Type:         domain.EventCollateralPledged,
			AssetID:      u64(a.ID),
			Account:      a.Owner,
			Counterparty: c.Custodian,
		}}
	}, nil
}

type ReleaseAsset struct {
	Caller  domain.Address `json:"caller"`
	AssetID uint64         `json:"asset_id"`
}

func (c ReleaseAsset) Kind() string           { return KindReleaseAsset }
func (c ReleaseAsset) caller() domain.Address { return c.Caller }

func (c ReleaseAsset) plan(tx *txn) (effect, error) {
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.Collateral.checkRelease(a, c.Caller); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Collateral.release(a)
		return Receipt{ID: a.ID}, []domain.Event{{
			Type:         domain.EventCollateralReleased,
			AssetID:      u64(a.ID),
			Account:      a.Owner,
			Counterparty: c.Caller,
		}}
	}, nil
}

////////////////////////////// Auditors //////////////////////////////

type SetAuditor struct {
	Caller  domain.Address `json:"caller"`
	Auditor domain.Address `json:"auditor"`
	Enabled bool           `json:"enabled"`
}

func (c SetAuditor) Kind() string           { return KindSetAuditor }
func (c SetAuditor) caller() domain.Address { return c.Caller }

func (c SetAuditor) plan(tx *txn) (effect, error) {
	if err := tx.requireAdmin(c.Caller); err != nil {
		return nil, err
	}
	if err := requireAddress(c.Auditor); err != nil {
		return nil, err
	}
	if c.Auditor == tx.p.Vault {
		return nil, fmt.Errorf("vault cannot audit: %w", domain.ErrInvalidAddress)
	}
	return func() (Receipt, []domain.Event) {
		tx.Auditors.set(c.Auditor, c.Enabled)
		enabled := c.Enabled
		return Receipt{}, []domain.Event{{
			Type:    domain.EventAuditorChanged,
			Account: c.Auditor,
			Enabled: &enabled,
		}}
	}, nil
}

////////////////////////////// Loans //////////////////////////////

type RequestLoan struct {
	Borrower        domain.Address  `json:"borrower"`
	AssetID         uint64          `json:"asset_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	InterestRateBps uint32          `json:"interest_rate_bps"`
	LeverageRatio   uint32          `json:"leverage_ratio"`
}

func (c RequestLoan) Kind() string           { return KindRequestLoan }
func (c RequestLoan) caller() domain.Address { return c.Borrower }

func (c RequestLoan) plan(tx *txn) (effect, error) {
	if err := requireAddress(c.Borrower); err != nil {
		return nil, err
	}
	if err := requirePositive(c.Amount); err != nil {
		return nil, err
	}
	a, err := tx.Collateral.get(c.AssetID)
	if err != nil {
		return nil, err
	}
	if a.Owner != c.Borrower {
		return nil, fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralNotOwned)
	}
	if a.InCustody() {
		return nil, fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralAlreadyPledged)
	}
	if tx.p.RequireVerifiedCollateral && !a.Verified {
		return nil, fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralNotVerified)
	}
	if err := tx.Collateral.checkPledge(a, c.Borrower, tx.p.Vault); err != nil {
		return nil, err
	}
	rate, leverage, fixed, err := tx.requestTerms(c, a.Valuation)
	if err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		id := tx.Loans.nextID()
		tx.Collateral.pledge(a, tx.p.Vault)
		a.ActiveLoanID = u64(id)
		loan := &domain.Loan{
			ID:                 id,
			Borrower:           c.Borrower,
			CollateralAssetID:  a.ID,
			RequestedAmount:    c.Amount,
			InterestRateBps:    rate,
			LeverageRatio:      leverage,
			TermsFixed:         fixed,
			Description:        c.Description,
			ApprovalsByAuditor: map[domain.Address]bool{},
			RequestedAt:        tx.now,
			ReserveRequirement: decimal.Zero,
			RepaidAmount:       decimal.Zero,
		}
		tx.Loans.Loans = append(tx.Loans.Loans, loan)
		return Receipt{ID: id, Amount: c.Amount}, []domain.Event{
			{
				Type:         domain.EventCollateralPledged,
				AssetID:      u64(a.ID),
				LoanID:       u64(id),
				Account:      c.Borrower,
				Counterparty: tx.p.Vault,
			},
			{
				Type:    domain.EventLoanRequested,
				LoanID:  u64(id),
				AssetID: u64(a.ID),
				Account: c.Borrower,
				Amount:  amt(c.Amount),
			},
		}
	}, nil
}

type ApproveLoan struct {
	Auditor         domain.Address `json:"auditor"`
	LoanID          uint64         `json:"loan_id"`
	InterestRateBps uint32         `json:"interest_rate_bps"`
	LeverageRatio   uint32         `json:"leverage_ratio"`
}

func (c ApproveLoan) Kind() string           { return KindApproveLoan }
func (c ApproveLoan) caller() domain.Address { return c.Auditor }

func (c ApproveLoan) plan(tx *txn) (effect, error) {
	loan, err := tx.Loans.get(c.LoanID)
	if err != nil {
		return nil, err
	}
	if !tx.Auditors.isAuditor(c.Auditor) {
		return nil, fmt.Errorf("%s is not an auditor: %w", c.Auditor, domain.ErrUnauthorized)
	}
	if loan.IsReleased {
		return nil, fmt.Errorf("loan %d: %w", loan.ID, domain.ErrLoanAlreadyReleased)
	}
	if loan.ApprovalsByAuditor[c.Auditor] {
		return nil, fmt.Errorf("loan %d by %s: %w", loan.ID, c.Auditor, domain.ErrAlreadyApproved)
	}
	a, err := tx.Collateral.get(loan.CollateralAssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.approvalTerms(loan, a.Valuation, c.InterestRateBps, c.LeverageRatio); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		if !loan.TermsFixed {
			loan.InterestRateBps = c.InterestRateBps
			loan.LeverageRatio = c.LeverageRatio
			loan.TermsFixed = true
		}
		loan.ApprovalsByAuditor[c.Auditor] = true
		loan.ApprovalCount++
		return Receipt{ID: loan.ID}, []domain.Event{{
			Type:          domain.EventLoanApproved,
			LoanID:        u64(loan.ID),
			Account:       c.Auditor,
			ApprovalCount: u32(loan.ApprovalCount),
		}}
	}, nil
}

type ReleaseFunds struct {
	Caller domain.Address `json:"caller"`
	LoanID uint64         `json:"loan_id"`
}

func (c ReleaseFunds) Kind() string           { return KindReleaseFunds }
func (c ReleaseFunds) caller() domain.Address { return c.Caller }

func (c ReleaseFunds) plan(tx *txn) (effect, error) {
	loan, err := tx.Loans.get(c.LoanID)
	if err != nil {
		return nil, err
	}
	if tx.p.ReleasePolicy == ReleaseByAuditorsOnly && !tx.Auditors.isAuditor(c.Caller) {
		return nil, fmt.Errorf("%s may not release funds: %w", c.Caller, domain.ErrUnauthorized)
	}
	if loan.IsReleased {
		return nil, fmt.Errorf("loan %d: %w", loan.ID, domain.ErrAlreadyReleased)
	}
	if loan.ApprovalCount < tx.p.ApprovalThreshold || !loan.TermsFixed {
		return nil, fmt.Errorf("loan %d has %d of %d: %w", loan.ID, loan.ApprovalCount, tx.p.ApprovalThreshold, domain.ErrInsufficientApprovals)
	}
	requirement := domain.CeilDiv(loan.RequestedAmount, loan.LeverageRatio)
	available, err := tx.Pool.available(tx.p.LenderAPRBps, tx.now)
	if err != nil {
		return nil, err
	}
	if available.LessThan(requirement) {
		return nil, fmt.Errorf("loan %d needs %s, %s available: %w", loan.ID, requirement, available, domain.ErrInsufficientReserve)
	}
	return func() (Receipt, []domain.Event) {
		loan.IsReleased = true
		loan.StartTime = tx.now
		loan.ReserveRequirement = requirement
		tx.Pool.commit(requirement)
		tx.Token.mint(loan.Borrower, loan.RequestedAmount)
		return Receipt{ID: loan.ID, Amount: loan.RequestedAmount}, []domain.Event{{
			Type:    domain.EventFundsReleased,
			LoanID:  u64(loan.ID),
			Account: loan.Borrower,
			Amount:  amt(loan.RequestedAmount),
		}}
	}, nil
}

type RepayLoan struct {
	Caller domain.Address `json:"caller"`
	LoanID uint64         `json:"loan_id"`
}

func (c RepayLoan) Kind() string           { return KindRepayLoan }
func (c RepayLoan) caller() domain.Address { return c.Caller }

func (c RepayLoan) plan(tx *txn) (effect, error) {
	loan, err := tx.Loans.get(c.LoanID)
	if err != nil {
		return nil, err
	}
	if c.Caller != loan.Borrower {
		return nil, fmt.Errorf("loan %d belongs to %s: %w", loan.ID, loan.Borrower, domain.ErrNotOwner)
	}
	if !loan.IsReleased {
		return nil, fmt.Errorf("loan %d: %w", loan.ID, domain.ErrLoanNotReleased)
	}
	if loan.IsRepaid {
		return nil, fmt.Errorf("loan %d: %w", loan.ID, domain.ErrAlreadyRepaid)
	}
	interest, err := domain.SimpleInterest(loan.RequestedAmount, loan.InterestRateBps, int64(tx.now.Sub(loan.StartTime)/time.Second))
	if err != nil {
		return nil, err
	}
	total := loan.RequestedAmount.Add(interest)
	if err := tx.Token.checkSpend(loan.Borrower, tx.p.Vault, total); err != nil {
		return nil, err
	}
	a, err := tx.Collateral.get(loan.CollateralAssetID)
	if err != nil {
		return nil, err
	}
	if err := tx.Collateral.checkRelease(a, tx.p.Vault); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		loan.IsRepaid = true
		loan.RepaidAt = tx.now
		loan.RepaidAmount = total
		tx.Pool.uncommit(loan.ReserveRequirement)
		tx.Collateral.release(a)
		tx.Token.burnFrom(loan.Borrower, tx.p.Vault, loan.RequestedAmount)
		if interest.IsPositive() {
			tx.Token.transferFrom(loan.Borrower, tx.p.Vault, tx.p.Vault, interest)
		}
		return Receipt{ID: loan.ID, Amount: total}, []domain.Event{
			{
				Type:    domain.EventRepaymentReceived,
				LoanID:  u64(loan.ID),
				Account: loan.Borrower,
				Amount:  amt(total),
			},
			{
				Type:         domain.EventCollateralReleased,
				LoanID:       u64(loan.ID),
				AssetID:      u64(a.ID),
				Account:      a.Owner,
				Counterparty: tx.p.Vault,
			},
		}
	}, nil
}

////////////////////////////// Liquidity //////////////////////////////

type DepositLiquidity struct {
	Lender      domain.Address  `json:"lender"`
	Amount      decimal.Decimal `json:"amount"`
	LockSeconds int64           `json:"lock_seconds"`
}

func (c DepositLiquidity) Kind() string           { return KindDepositLiquidity }
func (c DepositLiquidity) caller() domain.Address { return c.Lender }

func (c DepositLiquidity) plan(tx *txn) (effect, error) {
	if err := requireAddress(c.Lender); err != nil {
		return nil, err
	}
	if err := requirePositive(c.Amount); err != nil {
		return nil, err
	}
	if c.LockSeconds < 0 || c.LockSeconds > maxLockSeconds {
		return nil, fmt.Errorf("lock %ds: %w", c.LockSeconds, domain.ErrInvalidAmount)
	}
	lock := time.Duration(c.LockSeconds) * time.Second
	if lock == 0 {
		lock = tx.p.DefaultLock
	}
	return func() (Receipt, []domain.Event) {
		d := tx.Pool.deposit(c.Lender, c.Amount, tx.now, tx.now.Add(lock))
		return Receipt{ID: d.Index, Amount: d.Amount}, []domain.Event{{
			Type:         domain.EventDepositMade,
			DepositIndex: u64(d.Index),
			Account:      d.Lender,
			Amount:       amt(d.Amount),
		}}
	}, nil
}

// maxLockSeconds is the longest lock a time.Duration can hold.
const maxLockSeconds = math.MaxInt64 / int64(time.Second)

type WithdrawLiquidity struct {
	Lender domain.Address `json:"lender"`
	Index  uint64         `json:"index"`
}

func (c WithdrawLiquidity) Kind() string           { return KindWithdrawLiquidity }
func (c WithdrawLiquidity) caller() domain.Address { return c.Lender }

func (c WithdrawLiquidity) plan(tx *txn) (effect, error) {
	d, err := tx.Pool.get(c.Lender, c.Index)
	if err != nil {
		return nil, err
	}
	payout, err := tx.Pool.checkWithdraw(d, tx.p.LenderAPRBps, tx.now)
	if err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Pool.withdraw(d, payout, tx.now)
		return Receipt{ID: d.Index, Amount: payout}, []domain.Event{{
			Type:         domain.EventDepositWithdrawn,
			DepositIndex: u64(d.Index),
			Account:      d.Lender,
			Amount:       amt(payout),
		}}
	}, nil
}

type SeedCapital struct {
	Caller domain.Address  `json:"caller"`
	Amount decimal.Decimal `json:"amount"`
}

func (c SeedCapital) Kind() string           { return KindSeedCapital }
func (c SeedCapital) caller() domain.Address { return c.Caller }

func (c SeedCapital) plan(tx *txn) (effect, error) {
	if err := tx.requireAdmin(c.Caller); err != nil {
		return nil, err
	}
	if err := requirePositive(c.Amount); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Pool.seed(c.Amount)
		return Receipt{Amount: c.Amount}, []domain.Event{{
			Type:    domain.EventCapitalSeeded,
			Account: c.Caller,
			Amount:  amt(c.Amount),
		}}
	}, nil
}

////////////////////////////// Credit token //////////////////////////////

type ApproveCredit struct {
	Owner   domain.Address  `json:"owner"`
	Spender domain.Address  `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
}

func (c ApproveCredit) Kind() string           { return KindApproveCredit }
func (c ApproveCredit) caller() domain.Address { return c.Owner }

func (c ApproveCredit) plan(tx *txn) (effect, error) {
	if err := requireAddress(c.Owner, c.Spender); err != nil {
		return nil, err
	}
	if !domain.IsRepresentable(c.Amount) {
		return nil, fmt.Errorf("%s: %w", c.Amount.String(), domain.ErrInvalidAmount)
	}
	return func() (Receipt, []domain.Event) {
		tx.Token.approve(c.Owner, c.Spender, c.Amount)
		return Receipt{Amount: c.Amount}, nil
	}, nil
}

type TransferCredit struct {
	From   domain.Address  `json:"from"`
	To     domain.Address  `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func (c TransferCredit) Kind() string           { return KindTransferCredit }
func (c TransferCredit) caller() domain.Address { return c.From }

func (c TransferCredit) plan(tx *txn) (effect, error) {
	if err := requireAddress(c.From, c.To); err != nil {
		return nil, err
	}
	if err := requirePositive(c.Amount); err != nil {
		return nil, err
	}
	if err := tx.Token.checkBalance(c.From, c.Amount); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Token.move(c.From, c.To, c.Amount)
		return Receipt{Amount: c.Amount}, []domain.Event{{
			Type:         domain.EventCreditTransferred,
			Account:      c.From,
			Counterparty: c.To,
			Amount:       amt(c.Amount),
		}}
	}, nil
}

type TransferCreditFrom struct {
	Spender domain.Address  `json:"spender"`
	Owner   domain.Address  `json:"owner"`
	To      domain.Address  `json:"to"`
	Amount  decimal.Decimal `json:"amount"`
}

func (c TransferCreditFrom) Kind() string           { return KindTransferCreditFrom }
func (c TransferCreditFrom) caller() domain.Address { return c.Spender }

func (c TransferCreditFrom) plan(tx *txn) (effect, error) {
	if err := requireAddress(c.Spender, c.Owner, c.To); err != nil {
		return nil, err
	}
	if err := requirePositive(c.Amount); err != nil {
		return nil, err
	}
	if err := tx.Token.checkSpend(c.Owner, c.Spender, c.Amount); err != nil {
		return nil, err
	}
	return func() (Receipt, []domain.Event) {
		tx.Token.transferFrom(c.Owner, c.Spender, c.To, c.Amount)
		return Receipt{Amount: c.Amount}, []domain.Event{{
			Type:         domain.EventCreditTransferred,
			Account:      c.Owner,
			Counterparty: c.To,
			Amount:       amt(c.Amount),
		}}
	}, nil
}

// CallerOf reports the address a command acts on behalf of.
func CallerOf(cmd Command) domain.Address {
	return cmd.caller()
}
