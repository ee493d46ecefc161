package usecase

import (
	"context"

	"github.com/LavaJover/credit-ledger/internal/infrastructure/logger"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/metrics"
	"github.com/LavaJover/credit-ledger/internal/ledger"
	ledgerdto "github.com/LavaJover/credit-ledger/internal/usecase/dto/ledger"
	"github.com/sirupsen/logrus"
)

type LedgerUsecase interface {
	MintAsset(ctx context.Context, input *ledgerdto.MintAssetInput) (*ledgerdto.ReceiptOutput, error)
	ApproveAsset(ctx context.Context, input *ledgerdto.ApproveAssetInput) (*ledgerdto.ReceiptOutput, error)
	TransferAsset(ctx context.Context, input *ledgerdto.TransferAssetInput) (*ledgerdto.ReceiptOutput, error)
	SetAssetVerified(ctx context.Context, input *ledgerdto.SetAssetVerifiedInput) (*ledgerdto.ReceiptOutput, error)
	PledgeAsset(ctx context.Context, input *ledgerdto.PledgeAssetInput) (*ledgerdto.ReceiptOutput, error)
	ReleaseAsset(ctx context.Context, input *ledgerdto.ReleaseAssetInput) (*ledgerdto.ReceiptOutput, error)
	SetAuditor(ctx context.Context, input *ledgerdto.SetAuditorInput) (*ledgerdto.ReceiptOutput, error)

	RequestLoan(ctx context.Context, input *ledgerdto.RequestLoanInput) (*ledgerdto.ReceiptOutput, error)
	ApproveLoan(ctx context.Context, input *ledgerdto.ApproveLoanInput) (*ledgerdto.ReceiptOutput, error)
	ReleaseFunds(ctx context.Context, input *ledgerdto.ReleaseFundsInput) (*ledgerdto.ReceiptOutput, error)
	RepayLoan(ctx context.Context, input *ledgerdto.RepayLoanInput) (*ledgerdto.ReceiptOutput, error)

	DepositLiquidity(ctx context.Context, input *ledgerdto.DepositLiquidityInput) (*ledgerdto.ReceiptOutput, error)
	WithdrawLiquidity(ctx context.Context, input *ledgerdto.WithdrawLiquidityInput) (*ledgerdto.ReceiptOutput, error)
	SeedCapital(ctx context.Context, input *ledgerdto.SeedCapitalInput) (*ledgerdto.ReceiptOutput, error)

	ApproveCredit(ctx context.Context, input *ledgerdto.ApproveCreditInput) (*ledgerdto.ReceiptOutput, error)
	TransferCredit(ctx context.Context, input *ledgerdto.TransferCreditInput) (*ledgerdto.ReceiptOutput, error)
	TransferCreditFrom(ctx context.Context, input *ledgerdto.TransferCreditFromInput) (*ledgerdto.ReceiptOutput, error)

	GetLoan(loanID uint64) (*ledgerdto.LoanOutput, error)
	ListLoans(input *ledgerdto.ListLoansInput) (*ledgerdto.LoansOutput, error)
	GetAsset(assetID uint64) (*ledgerdto.AssetOutput, error)
	DepositCount(lender string) (*ledgerdto.DepositCountOutput, error)
	GetDeposit(lender string, index uint64) (*ledgerdto.DepositOutput, error)
	IsAuditor(address string) (*ledgerdto.AuditorOutput, error)
	Reserve() *ledgerdto.ReserveOutput
	Supply() *ledgerdto.SupplyOutput
	Balance(owner string) (*ledgerdto.BalanceOutput, error)
	Allowance(owner, spender string) (*ledgerdto.AllowanceOutput, error)

	Restore(ctx context.Context) error
	TakeSnapshot(ctx context.Context) error
}

var _ LedgerUsecase = (*DefaultLedgerUsecase)(nil)

// SnapshotPruner drops old snapshots once a new one is saved.
type SnapshotPruner interface {
	PruneSnapshots(ctx context.Context, keep int) (int64, error)
}

type DefaultLedgerUsecase struct {
	Ledger        *ledger.Ledger
	FailureLogger logger.OperationEventLogger
	Pruner        SnapshotPruner
	Metrics       *metrics.LedgerMetrics
	Log           logrus.FieldLogger
	KeepSnapshots int
}

func NewDefaultLedgerUsecase(
	l *ledger.Ledger,
	failureLogger logger.OperationEventLogger,
	pruner SnapshotPruner,
	ledgerMetrics *metrics.LedgerMetrics,
	log logrus.FieldLogger) *DefaultLedgerUsecase {

	return &DefaultLedgerUsecase{
		Ledger:        l,
		FailureLogger: failureLogger,
		Pruner:        pruner,
		Metrics:       ledgerMetrics,
		Log:           log,
		KeepSnapshots: 3,
	}
}
