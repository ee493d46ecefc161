package usecase

import (
	"sort"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
)

const maxLoansPage = 100

func (uc *DefaultLedgerUsecase) GetLoan(loanID uint64) (*ledgerdto.LoanOutput, error) {
	loan, err := uc.Ledger.Loan(loanID)
	if err != nil {
		return nil, err
	}
	return uc.toLoanOutput(loan), nil
}

func (uc *DefaultLedgerUsecase) ListLoans(input *ledgerdto.ListLoansInput) (*ledgerdto.LoansOutput, error) {
	if input.Offset < 0 || input.Limit < 0 {
		return nil, fieldError("paging", domain.ErrInvalidAmount)
	}
	limit := input.Limit
	if limit == 0 || limit > maxLoansPage {
		limit = maxLoansPage
	}
	loans := uc.Ledger.Loans(input.Offset, limit)
	out := &ledgerdto.LoansOutput{
		Loans: make([]*ledgerdto.LoanOutput, 0, len(loans)),
		Total: uc.Ledger.LoanCount(),
	}
	for _, loan := range loans {
		out.Loans = append(out.Loans, uc.toLoanOutput(loan))
	}
	return out, nil
}

func (uc *DefaultLedgerUsecase) toLoanOutput(loan *domain.Loan) *ledgerdto.LoanOutput {
	out := &ledgerdto.LoanOutput{
		ID:                loan.ID,
		Borrower:          loan.Borrower.String(),
		CollateralAssetID: loan.CollateralAssetID,
		RequestedAmount:   loan.RequestedAmount.String(),
		InterestRateBps:   loan.InterestRateBps,
		LeverageRatio:     loan.LeverageRatio,
		TermsFixed:        loan.TermsFixed,
		Description:       loan.Description,
		Approvers:         make([]string, 0, len(loan.ApprovalsByAuditor)),
		ApprovalCount:     loan.ApprovalCount,
		Status:            string(loan.Status(uc.Ledger.Threshold())),
		IsReleased:        loan.IsReleased,
		IsRepaid:          loan.IsRepaid,
		RequestedAt:       loan.RequestedAt,
	}
	for auditor, approved := range loan.ApprovalsByAuditor {
		if approved {
			out.Approvers = append(out.Approvers, auditor.String())
		}
	}
	sort.Strings(out.Approvers)

	if loan.IsReleased {
		out.StartTime = timePtr(loan.StartTime)
		out.ReserveRequirement = loan.ReserveRequirement.String()
		if owed, err := uc.Ledger.AmountOwed(loan.ID); err == nil {
			out.AmountOwed = owed.String()
		}
	}
	if loan.IsRepaid {
		out.RepaidAt = timePtr(loan.RepaidAt)
		out.RepaidAmount = loan.RepaidAmount.String()
	}
	return out
}

func (uc *DefaultLedgerUsecase) GetAsset(assetID uint64) (*ledgerdto.AssetOutput, error) {
	asset, err := uc.Ledger.Asset(assetID)
	if err != nil {
		return nil, err
	}
	out := &ledgerdto.AssetOutput{
		ID:           asset.ID,
		Owner:        asset.Owner.String(),
		MetadataURI:  asset.MetadataURI,
		DisplayName:  asset.DisplayName,
		Valuation:    asset.Valuation.String(),
		AssetClass:   string(asset.AssetClass),
		LocationTag:  asset.LocationTag,
		Verified:     asset.Verified,
		ActiveLoanID: asset.ActiveLoanID,
		MintedAt:     asset.MintedAt,
	}
	if asset.CustodyHolder != nil {
		out.CustodyHolder = asset.CustodyHolder.String()
	}
	if asset.Approved != nil {
		out.Approved = asset.Approved.String()
	}
	return out, nil
}

func (uc *DefaultLedgerUsecase) DepositCount(lender string) (*ledgerdto.DepositCountOutput, error) {
	addr, err := parseAddress("lender", lender)
	if err != nil {
		return nil, err
	}
	return &ledgerdto.DepositCountOutput{Lender: addr.String(), Count: uc.Ledger.DepositCount(addr)}, nil
}

func (uc *DefaultLedgerUsecase) GetDeposit(lender string, index uint64) (*ledgerdto.DepositOutput, error) {
	addr, err := parseAddress("lender", lender)
	if err != nil {
		return nil, err
	}
	deposit, err := uc.Ledger.Deposit(addr, index)
	if err != nil {
		return nil, err
	}
	out := &ledgerdto.DepositOutput{
		Lender:      deposit.Lender.String(),
		Index:       deposit.Index,
		Amount:      deposit.Amount.String(),
		DepositedAt: deposit.DepositedAt,
		LockUntil:   deposit.LockUntil,
		Withdrawn:   deposit.Withdrawn,
	}
	if deposit.Withdrawn {
		out.WithdrawnAt = timePtr(deposit.WithdrawnAt)
		out.Payout = deposit.Payout.String()
	}
	return out, nil
}

func (uc *DefaultLedgerUsecase) IsAuditor(address string) (*ledgerdto.AuditorOutput, error) {
	addr, err := parseAddress("address", address)
	if err != nil {
		return nil, err
	}
	return &ledgerdto.AuditorOutput{
		Address:   addr.String(),
		IsAuditor: uc.Ledger.IsAuditor(addr),
		Threshold: uc.Ledger.Threshold(),
	}, nil
}

func (uc *DefaultLedgerUsecase) Reserve() *ledgerdto.ReserveOutput {
	return &ledgerdto.ReserveOutput{
		Seq:               uc.Ledger.Seq(),
		PoolBalance:       uc.Ledger.PoolBalance().String(),
		AvailableReserve:  uc.Ledger.AvailableReserve().String(),
		CommittedReserve:  uc.Ledger.CommittedReserve().String(),
		TotalSupply:       uc.Ledger.TotalSupply().String(),
		ApprovalThreshold: uc.Ledger.Threshold(),
	}
}

func (uc *DefaultLedgerUsecase) Supply() *ledgerdto.SupplyOutput {
	return &ledgerdto.SupplyOutput{TotalSupply: uc.Ledger.TotalSupply().String()}
}

func (uc *DefaultLedgerUsecase) Balance(owner string) (*ledgerdto.BalanceOutput, error) {
	addr, err := parseAddress("owner", owner)
	if err != nil {
		return nil, err
	}
	return &ledgerdto.BalanceOutput{Owner: addr.String(), Balance: uc.Ledger.BalanceOf(addr).String()}, nil
}

func (uc *DefaultLedgerUsecase) Allowance(owner, spender string) (*ledgerdto.AllowanceOutput, error) {
	addrs, err := addresses("owner", owner, "spender", spender)
	if err != nil {
		return nil, err
	}
	return &ledgerdto.AllowanceOutput{
		Owner:     addrs[0].String(),
		Spender:   addrs[1].String(),
		Allowance: uc.Ledger.Allowance(addrs[0], addrs[1]).String(),
	}, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
