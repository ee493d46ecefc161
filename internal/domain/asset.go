package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetClass string

const (
	AssetClassHardware   AssetClass = "HARDWARE"
	AssetClassRealEstate AssetClass = "REAL_ESTATE"
	AssetClassVehicle    AssetClass = "VEHICLE"
	AssetClassEquipment  AssetClass = "EQUIPMENT"
	AssetClassCommodity  AssetClass = "COMMODITY"
)

func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassHardware, AssetClassRealEstate, AssetClassVehicle, AssetClassEquipment, AssetClassCommodity:
		return true
	}
	return false
}

// CollateralAsset is a non-fungible record of a real-world asset.
// While CustodyHolder is set, the owner cannot move it.
type CollateralAsset struct {
	ID            uint64          `json:"id"`
	Owner         Address         `json:"owner"`
	MetadataURI   string          `json:"metadata_uri"`
	DisplayName   string          `json:"display_name"`
	Valuation     decimal.Decimal `json:"valuation"`
	AssetClass    AssetClass      `json:"asset_class"`
	LocationTag   string          `json:"location_tag"`
	Verified      bool            `json:"verified"`
	CustodyHolder *Address        `json:"custody_holder,omitempty"`
	Approved      *Address        `json:"approved,omitempty"`
	ActiveLoanID  *uint64         `json:"active_loan_id,omitempty"`
	MintedAt      time.Time       `json:"minted_at"`
}

func (a *CollateralAsset) InCustody() bool {
	return a.CustodyHolder != nil
}

func (a *CollateralAsset) Clone() *CollateralAsset {
	c := *a
	if a.CustodyHolder != nil {
		h := *a.CustodyHolder
		c.CustodyHolder = &h
	}
	if a.Approved != nil {
		op := *a.Approved
		c.Approved = &op
	}
	if a.ActiveLoanID != nil {
		id := *a.ActiveLoanID
		c.ActiveLoanID = &id
	}
	return &c
}
