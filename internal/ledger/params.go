package ledger

import (
	"fmt"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
)

// TermsPolicy decides when a loan's rate and leverage become final.
type TermsPolicy string

const (
	// TermsFixedAtRequest: the borrower supplies the terms with the request.
	TermsFixedAtRequest TermsPolicy = "fixed_at_request"
	// TermsSetByFirstApprover: the first approving auditor supplies the terms.
	TermsSetByFirstApprover TermsPolicy = "set_by_first_approver"
)

// ReleasePolicy decides who may trigger releaseFunds once quorum is reached.
type ReleasePolicy string

const (
	ReleaseByAnyone       ReleasePolicy = "anyone"
	ReleaseByAuditorsOnly ReleasePolicy = "auditors_only"
)

const DefaultLockDuration = 30 * 24 * time.Hour

type Params struct {
	Admin                     domain.Address
	Vault                     domain.Address
	ApprovalThreshold         uint32
	MaxLeverage               uint32
	MaxInterestRateBps        uint32
	LenderAPRBps              uint32
	TermsPolicy               TermsPolicy
	ReleasePolicy             ReleasePolicy
	DefaultLock               time.Duration
	RequireVerifiedCollateral bool
}

func (p *Params) Validate() error {
	if p.Admin.IsZero() || p.Vault.IsZero() {
		return fmt.Errorf("admin and vault addresses are required: %w", domain.ErrInvalidAddress)
	}
	if p.Admin == p.Vault {
		return fmt.Errorf("admin and vault must differ: %w", domain.ErrInvalidAddress)
	}
	if p.ApprovalThreshold == 0 {
		return fmt.Errorf("approval threshold must be positive")
	}
	if p.MaxLeverage == 0 {
		return fmt.Errorf("max leverage must be positive")
	}
	if p.TermsPolicy == "" {
		p.TermsPolicy = TermsFixedAtRequest
	}
	if p.ReleasePolicy == "" {
		p.ReleasePolicy = ReleaseByAnyone
	}
	switch p.TermsPolicy {
	case TermsFixedAtRequest, TermsSetByFirstApprover:
	default:
		return fmt.Errorf("unknown terms policy %q", p.TermsPolicy)
	}
	switch p.ReleasePolicy {
	case ReleaseByAnyone, ReleaseByAuditorsOnly:
	default:
		return fmt.Errorf("unknown release policy %q", p.ReleasePolicy)
	}
	if p.MaxInterestRateBps == 0 {
		p.MaxInterestRateBps = domain.BpsDenominator
	}
	if p.DefaultLock < 0 {
		return fmt.Errorf("default lock must not be negative")
	}
	if p.DefaultLock == 0 {
		p.DefaultLock = DefaultLockDuration
	}
	return nil
}
