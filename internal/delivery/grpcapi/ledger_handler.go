package grpcapi

import (
	"context"

	"github.com/LavaJover/credit-ledger/internal/usecase"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
)

type LedgerHandler struct {
	uc usecase.LedgerUsecase
}

func NewLedgerHandler(uc usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

func reply(out *ledgerdto.ReceiptOutput, err error) (*Receipt, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (h *LedgerHandler) MintAsset(ctx context.Context, r *MintAssetRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.MintAsset(ctx, &ledgerdto.MintAssetInput{
		Caller:      caller.String(),
		Owner:       r.Owner,
		MetadataURI: r.MetadataURI,
		Name:        r.Name,
		Valuation:   r.Valuation,
		AssetClass:  r.AssetClass,
		LocationTag: r.LocationTag,
	}))
}

func (h *LedgerHandler) ApproveAsset(ctx context.Context, r *ApproveAssetRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.ApproveAsset(ctx, &ledgerdto.ApproveAssetInput{Caller: caller.String(), AssetID: r.AssetID, Operator: r.Operator}))
}

func (h *LedgerHandler) TransferAsset(ctx context.Context, r *TransferAssetRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.TransferAsset(ctx, &ledgerdto.TransferAssetInput{Caller: caller.String(), AssetID: r.AssetID, To: r.To}))
}

func (h *LedgerHandler) SetAssetVerified(ctx context.Context, r *SetAssetVerifiedRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.SetAssetVerified(ctx, &ledgerdto.SetAssetVerifiedInput{Caller: caller.String(), AssetID: r.AssetID, Verified: r.Verified}))
}

func (h *LedgerHandler) PledgeAsset(ctx context.Context, r *PledgeAssetRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.PledgeAsset(ctx, &ledgerdto.PledgeAssetInput{Caller: caller.String(), AssetID: r.AssetID, Custodian: r.Custodian}))
}

func (h *LedgerHandler) ReleaseAsset(ctx context.Context, r *ReleaseAssetRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.ReleaseAsset(ctx, &ledgerdto.ReleaseAssetInput{Caller: caller.String(), AssetID: r.AssetID}))
}

func (h *LedgerHandler) SetAuditor(ctx context.Context, r *SetAuditorRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.SetAuditor(ctx, &ledgerdto.SetAuditorInput{Caller: caller.String(), Auditor: r.Auditor, Enabled: r.Enabled}))
}

func (h *LedgerHandler) RequestLoan(ctx context.Context, r *RequestLoanRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.RequestLoan(ctx, &ledgerdto.RequestLoanInput{
		Borrower:        caller.String(),
		AssetID:         r.AssetID,
		Amount:          r.Amount,
		Description:     r.Description,
		InterestRateBps: r.InterestRateBps,
		LeverageRatio:   r.LeverageRatio,
	}))
}

func (h *LedgerHandler) ApproveLoan(ctx context.Context, r *ApproveLoanRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.ApproveLoan(ctx, &ledgerdto.ApproveLoanInput{
		Auditor:         caller.String(),
		LoanID:          r.LoanID,
		InterestRateBps: r.InterestRateBps,
		LeverageRatio:   r.LeverageRatio,
	}))
}

func (h *LedgerHandler) ReleaseFunds(ctx context.Context, r *LoanRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.ReleaseFunds(ctx, &ledgerdto.ReleaseFundsInput{Caller: caller.String(), LoanID: r.LoanID}))
}

func (h *LedgerHandler) RepayLoan(ctx context.Context, r *LoanRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.RepayLoan(ctx, &ledgerdto.RepayLoanInput{Caller: caller.String(), LoanID: r.LoanID}))
}

func (h *LedgerHandler) DepositLiquidity(ctx context.Context, r *DepositLiquidityRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.DepositLiquidity(ctx, &ledgerdto.DepositLiquidityInput{Lender: caller.String(), Amount: r.Amount, LockSeconds: r.LockSeconds}))
}

func (h *LedgerHandler) WithdrawLiquidity(ctx context.Context, r *WithdrawLiquidityRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.WithdrawLiquidity(ctx, &ledgerdto.WithdrawLiquidityInput{Lender: caller.String(), Index: r.Index}))
}

func (h *LedgerHandler) SeedCapital(ctx context.Context, r *SeedCapitalRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.SeedCapital(ctx, &ledgerdto.SeedCapitalInput{Caller: caller.String(), Amount: r.Amount}))
}

func (h *LedgerHandler) ApproveCredit(ctx context.Context, r *ApproveCreditRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.ApproveCredit(ctx, &ledgerdto.ApproveCreditInput{Owner: caller.String(), Spender: r.Spender, Amount: r.Amount}))
}

func (h *LedgerHandler) TransferCredit(ctx context.Context, r *TransferCreditRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.TransferCredit(ctx, &ledgerdto.TransferCreditInput{From: caller.String(), To: r.To, Amount: r.Amount}))
}

func (h *LedgerHandler) TransferCreditFrom(ctx context.Context, r *TransferCreditFromRequest) (*Receipt, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(h.uc.TransferCreditFrom(ctx, &ledgerdto.TransferCreditFromInput{
		Spender: caller.String(),
		Owner:   r.Owner,
		To:      r.To,
		Amount:  r.Amount,
	}))
}
