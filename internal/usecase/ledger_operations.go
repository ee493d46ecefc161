package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/logger"
	"github.com/LavaJover/credit-ledger/internal/ledger"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

//////////////////////////// Command processing ////////////////////////////

// process commits cmd synchronously. Failure bookkeeping (metrics, log line,
// failure table) happens here; the failure row is written asynchronously.
func (uc *DefaultLedgerUsecase) process(ctx context.Context, cmd ledger.Command) (*ledgerdto.ReceiptOutput, error) {
	op := cmd.Kind()
	fields := logrus.Fields{
		"op":         op,
		"caller":     ledger.CallerOf(cmd),
		"request_id": RequestIDFrom(ctx),
	}

	start := time.Now()
	receipt, err := uc.Ledger.Execute(ctx, cmd)
	uc.Metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		class := domain.ClassOf(err)
		uc.Metrics.OperationErrors.WithLabelValues(op, string(class)).Inc()
		entry := uc.Log.WithFields(fields).WithField("class", class).WithError(err)
		if class == domain.ClassInternal {
			entry.Error("ledger operation failed")
		} else {
			entry.Warn("ledger operation rejected")
		}
		uc.recordFailure(ctx, cmd, class, err)
		return nil, err
	}

	uc.Metrics.OperationsTotal.WithLabelValues(op).Inc()
	uc.refreshBalances()
	uc.Log.WithFields(fields).WithFields(logrus.Fields{"seq": receipt.Seq, "id": receipt.ID}).Info("ledger operation committed")

	return toReceiptOutput(receipt), nil
}

func (uc *DefaultLedgerUsecase) recordFailure(ctx context.Context, cmd ledger.Command, class domain.ErrorClass, cause error) {
	if uc.FailureLogger == nil {
		return
	}
	payload, _ := json.Marshal(cmd)
	event := logger.OperationFailedEvent{
		RequestID:  RequestIDFrom(ctx),
		Operation:  cmd.Kind(),
		Caller:     ledger.CallerOf(cmd).String(),
		ErrorClass: string(class),
		Reason:     cause.Error(),
		Payload:    string(payload),
		Timestamp:  time.Now().UTC(),
	}
	go func(event logger.OperationFailedEvent) {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.FailureLogger.LogOperationFailed(writeCtx, event); err != nil {
			uc.Log.WithError(err).WithField("op", event.Operation).Error("failed to record operation failure")
		}
	}(event)
}

func (uc *DefaultLedgerUsecase) refreshBalances() {
	uc.Metrics.SetBalances(
		uc.Ledger.Seq(),
		uc.Ledger.PoolBalance(),
		uc.Ledger.AvailableReserve(),
		uc.Ledger.CommittedReserve(),
		uc.Ledger.TotalSupply(),
	)
}

func toReceiptOutput(r ledger.Receipt) *ledgerdto.ReceiptOutput {
	out := &ledgerdto.ReceiptOutput{Seq: r.Seq, ID: r.ID}
	if !r.Amount.IsZero() {
		out.Amount = r.Amount.String()
	}
	return out
}

//////////////////////////// Input parsing ////////////////////////////

func parseAddress(field, s string) (domain.Address, error) {
	a, err := domain.ParseAddress(s)
	if err != nil {
		return "", fieldError(field, err)
	}
	return a, nil
}

// parseOptionalAddress accepts an empty string as "no address".
func parseOptionalAddress(field, s string) (domain.Address, error) {
	if s == "" {
		return "", nil
	}
	return parseAddress(field, s)
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := domain.ParseAmount(s)
	if err != nil {
		return decimal.Zero, fieldError(field, err)
	}
	return d, nil
}

type invalidFieldError struct {
	field string
	err   error
}

func (e *invalidFieldError) Error() string { return e.field + ": " + e.err.Error() }
func (e *invalidFieldError) Unwrap() error { return e.err }

func fieldError(field string, err error) error {
	var fe *invalidFieldError
	if errors.As(err, &fe) {
		return err
	}
	return &invalidFieldError{field: field, err: err}
}

// addresses parses name/value pairs in order, stopping at the first bad one.
func addresses(pairs ...string) ([]domain.Address, error) {
	out := make([]domain.Address, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		a, err := parseAddress(pairs[i], pairs[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

//////////////////////////// Collateral ////////////////////////////

func (uc *DefaultLedgerUsecase) MintAsset(ctx context.Context, input *ledgerdto.MintAssetInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("caller", input.Caller, "owner", input.Owner)
	if err != nil {
		return nil, err
	}
	valuation, err := decimal.NewFromString(input.Valuation)
	if err != nil {
		return nil, fieldError("valuation", domain.ErrInvalidValuation)
	}
	return uc.process(ctx, ledger.MintAsset{
		Caller:      addrs[0],
		Owner:       addrs[1],
		MetadataURI: input.MetadataURI,
		Name:        input.Name,
		Valuation:   valuation,
		AssetClass:  domain.AssetClass(input.AssetClass),
		LocationTag: input.LocationTag,
	})
}

func (uc *DefaultLedgerUsecase) ApproveAsset(ctx context.Context, input *ledgerdto.ApproveAssetInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	operator, err := parseOptionalAddress("operator", input.Operator)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.ApproveAsset{Caller: caller, AssetID: input.AssetID, Operator: operator})
}

func (uc *DefaultLedgerUsecase) TransferAsset(ctx context.Context, input *ledgerdto.TransferAssetInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("caller", input.Caller, "to", input.To)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.TransferAsset{Caller: addrs[0], AssetID: input.AssetID, To: addrs[1]})
}

func (uc *DefaultLedgerUsecase) SetAssetVerified(ctx context.Context, input *ledgerdto.SetAssetVerifiedInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.SetAssetVerified{Caller: caller, AssetID: input.AssetID, Verified: input.Verified})
}

func (uc *DefaultLedgerUsecase) PledgeAsset(ctx context.Context, input *ledgerdto.PledgeAssetInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("caller", input.Caller, "custodian", input.Custodian)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.PledgeAsset{Caller: addrs[0], AssetID: input.AssetID, Custodian: addrs[1]})
}

func (uc *DefaultLedgerUsecase) ReleaseAsset(ctx context.Context, input *ledgerdto.ReleaseAssetInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.ReleaseAsset{Caller: caller, AssetID: input.AssetID})
}

func (uc *DefaultLedgerUsecase) SetAuditor(ctx context.Context, input *ledgerdto.SetAuditorInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("caller", input.Caller, "auditor", input.Auditor)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.SetAuditor{Caller: addrs[0], Auditor: addrs[1], Enabled: input.Enabled})
}

//////////////////////////// Loans ////////////////////////////

func (uc *DefaultLedgerUsecase) RequestLoan(ctx context.Context, input *ledgerdto.RequestLoanInput) (*ledgerdto.ReceiptOutput, error) {
	borrower, err := parseAddress("borrower", input.Borrower)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.RequestLoan{
		Borrower:        borrower,
		AssetID:         input.AssetID,
		Amount:          amount,
		Description:     input.Description,
		InterestRateBps: input.InterestRateBps,
		LeverageRatio:   input.LeverageRatio,
	})
}

func (uc *DefaultLedgerUsecase) ApproveLoan(ctx context.Context, input *ledgerdto.ApproveLoanInput) (*ledgerdto.ReceiptOutput, error) {
	auditor, err := parseAddress("auditor", input.Auditor)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.ApproveLoan{
		Auditor:         auditor,
		LoanID:          input.LoanID,
		InterestRateBps: input.InterestRateBps,
		LeverageRatio:   input.LeverageRatio,
	})
}

func (uc *DefaultLedgerUsecase) ReleaseFunds(ctx context.Context, input *ledgerdto.ReleaseFundsInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.ReleaseFunds{Caller: caller, LoanID: input.LoanID})
}

func (uc *DefaultLedgerUsecase) RepayLoan(ctx context.Context, input *ledgerdto.RepayLoanInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.RepayLoan{Caller: caller, LoanID: input.LoanID})
}

//////////////////////////// Liquidity ////////////////////////////

func (uc *DefaultLedgerUsecase) DepositLiquidity(ctx context.Context, input *ledgerdto.DepositLiquidityInput) (*ledgerdto.ReceiptOutput, error) {
	lender, err := parseAddress("lender", input.Lender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.DepositLiquidity{Lender: lender, Amount: amount, LockSeconds: input.LockSeconds})
}

func (uc *DefaultLedgerUsecase) WithdrawLiquidity(ctx context.Context, input *ledgerdto.WithdrawLiquidityInput) (*ledgerdto.ReceiptOutput, error) {
	lender, err := parseAddress("lender", input.Lender)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.WithdrawLiquidity{Lender: lender, Index: input.Index})
}

func (uc *DefaultLedgerUsecase) SeedCapital(ctx context.Context, input *ledgerdto.SeedCapitalInput) (*ledgerdto.ReceiptOutput, error) {
	caller, err := parseAddress("caller", input.Caller)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.SeedCapital{Caller: caller, Amount: amount})
}

//////////////////////////// Credit token ////////////////////////////

func (uc *DefaultLedgerUsecase) ApproveCredit(ctx context.Context, input *ledgerdto.ApproveCreditInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("owner", input.Owner, "spender", input.Spender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.ApproveCredit{Owner: addrs[0], Spender: addrs[1], Amount: amount})
}

func (uc *DefaultLedgerUsecase) TransferCredit(ctx context.Context, input *ledgerdto.TransferCreditInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("from", input.From, "to", input.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.TransferCredit{From: addrs[0], To: addrs[1], Amount: amount})
}

func (uc *DefaultLedgerUsecase) TransferCreditFrom(ctx context.Context, input *ledgerdto.TransferCreditFromInput) (*ledgerdto.ReceiptOutput, error) {
	addrs, err := addresses("spender", input.Spender, "owner", input.Owner, "to", input.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	return uc.process(ctx, ledger.TransferCreditFrom{Spender: addrs[0], Owner: addrs[1], To: addrs[2], Amount: amount})
}

//////////////////////////// Durability ////////////////////////////

func (uc *DefaultLedgerUsecase) Restore(ctx context.Context) error {
	start := time.Now()
	seq, err := uc.Ledger.Restore(ctx)
	if err != nil {
		return err
	}
	uc.refreshBalances()
	uc.Log.WithFields(logrus.Fields{"seq": seq, "took": time.Since(start).String()}).Info("ledger restored")
	return nil
}

func (uc *DefaultLedgerUsecase) TakeSnapshot(ctx context.Context) error {
	snapshot, err := uc.Ledger.Snapshot(ctx)
	if err != nil {
		uc.Metrics.SnapshotsTotal.WithLabelValues("failed").Inc()
		return err
	}
	if snapshot == nil {
		uc.Metrics.SnapshotsTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	uc.Metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	entry := uc.Log.WithFields(logrus.Fields{"seq": snapshot.Seq, "bytes": len(snapshot.State)})

	if uc.Pruner != nil {
		pruned, err := uc.Pruner.PruneSnapshots(ctx, uc.KeepSnapshots)
		if err != nil {
			entry.WithError(err).Warn("failed to prune snapshots")
		} else {
			entry = entry.WithField("pruned", pruned)
		}
	}
	entry.Info("ledger snapshot saved")
	return nil
}
