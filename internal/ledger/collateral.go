package ledger

import (
	"fmt"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type collateralRegistry struct {
	Assets []*domain.CollateralAsset `json:"assets"`
}

func (r *collateralRegistry) get(id uint64) (*domain.CollateralAsset, error) {
	if id >= uint64(len(r.Assets)) {
		return nil, fmt.Errorf("asset %d: %w", id, domain.ErrAssetNotFound)
	}
	return r.Assets[id], nil
}

func checkValuation(v decimal.Decimal) error {
	if !domain.IsRepresentable(v) {
		return fmt.Errorf("%s: %w", v.String(), domain.ErrInvalidValuation)
	}
	return nil
}

func (r *collateralRegistry) mint(a domain.CollateralAsset, now time.Time) *domain.CollateralAsset {
	a.ID = uint64(len(r.Assets))
	a.Verified = true
	a.MintedAt = now
	r.Assets = append(r.Assets, &a)
	return &a
}

func (r *collateralRegistry) checkApprove(a *domain.CollateralAsset, owner domain.Address) error {
	if a.Owner != owner {
		return domain.ErrNotOwner
	}
	if a.InCustody() {
		return fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralAlreadyPledged)
	}
	return nil
}

func (r *collateralRegistry) approve(a *domain.CollateralAsset, operator domain.Address) {
	if operator.IsZero() {
		a.Approved = nil
		return
	}
	a.Approved = &operator
}

func (r *collateralRegistry) checkTransfer(a *domain.CollateralAsset, from, to domain.Address) error {
	if to.IsZero() {
		return domain.ErrInvalidAddress
	}
	if a.Owner != from {
		return domain.ErrNotOwner
	}
	if a.InCustody() {
		return fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralAlreadyPledged)
	}
	return nil
}

func (r *collateralRegistry) transfer(a *domain.CollateralAsset, to domain.Address) {
	a.Owner = to
	a.Approved = nil
}

// checkPledge requires the pledger to own the asset and to have granted
// transfer rights to the custodian.
func (r *collateralRegistry) checkPledge(a *domain.CollateralAsset, pledger, custodian domain.Address) error {
	if custodian.IsZero() {
		return domain.ErrInvalidAddress
	}
	if a.Owner != pledger {
		return domain.ErrNotOwner
	}
	if a.InCustody() {
		return fmt.Errorf("asset %d: %w", a.ID, domain.ErrCollateralAlreadyPledged)
	}
	if a.Approved == nil || *a.Approved != custodian {
		return fmt.Errorf("asset %d: %w", a.ID, domain.ErrNotApproved)
	}
	return nil
}

func (r *collateralRegistry) pledge(a *domain.CollateralAsset, custodian domain.Address) {
	a.CustodyHolder = &custodian
	a.Approved = nil
}

func (r *collateralRegistry) checkRelease(a *domain.CollateralAsset, caller domain.Address) error {
	if !a.InCustody() || *a.CustodyHolder != caller {
		return fmt.Errorf("asset %d: %w", a.ID, domain.ErrUnauthorized)
	}
	return nil
}

func (r *collateralRegistry) release(a *domain.CollateralAsset) {
	a.CustodyHolder = nil
	a.ActiveLoanID = nil
}
