package setup

import (
	"fmt"

	"github.com/LavaJover/credit-ledger/internal/config"
	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/LavaJover/credit-ledger/internal/ledger"
)

// LedgerParams maps the ledger and pool config sections onto ledger.Params.
func LedgerParams(cfg *config.LedgerConfig) (ledger.Params, error) {
	admin, err := domain.ParseAddress(cfg.Ledger.Admin)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("ledger.admin: %w", err)
	}
	vault, err := domain.ParseAddress(cfg.Ledger.Vault)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("ledger.vault: %w", err)
	}

	params := ledger.Params{
		Admin:                     admin,
		Vault:                     vault,
		ApprovalThreshold:         cfg.Ledger.ApprovalThreshold,
		MaxLeverage:               cfg.Ledger.MaxLeverage,
		MaxInterestRateBps:        cfg.Ledger.MaxInterestRateBps,
		LenderAPRBps:              cfg.Ledger.LenderAPRBps,
		TermsPolicy:               ledger.TermsPolicy(cfg.Ledger.TermsPolicy),
		ReleasePolicy:             ledger.ReleasePolicy(cfg.Ledger.ReleasePolicy),
		DefaultLock:               cfg.Pool.DefaultLock,
		RequireVerifiedCollateral: cfg.Ledger.RequireVerifiedCollateral,
	}
	if err := params.Validate(); err != nil {
		return ledger.Params{}, err
	}
	return params, nil
}
