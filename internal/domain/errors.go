package domain

import (
	"errors"
	"fmt"
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotOwner     = errors.New("caller is not the owner")
	ErrNotApproved  = errors.New("transfer rights not granted")
)

// State-conflict errors
var (
	ErrAlreadyApproved          = errors.New("auditor already approved this loan")
	ErrAlreadyReleased          = errors.New("loan funds already released")
	ErrLoanAlreadyReleased      = fmt.Errorf("approvals closed: %w", ErrAlreadyReleased)
	ErrAlreadyRepaid            = errors.New("loan already repaid")
	ErrAlreadyWithdrawn         = errors.New("deposit already withdrawn")
	ErrCollateralAlreadyPledged = errors.New("collateral already pledged")
)

// Precondition errors
var (
	ErrInsufficientApprovals = errors.New("insufficient approvals")
	ErrInsufficientReserve   = errors.New("insufficient reserve")
	ErrStillLocked           = errors.New("deposit is still locked")
	ErrLoanNotReleased       = errors.New("loan funds not released")
	ErrCollateralNotVerified = errors.New("collateral is not verified")
)

// Input-validation errors
var (
	ErrInvalidValuation   = errors.New("invalid valuation")
	ErrLeverageExceeded   = errors.New("leverage exceeded")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTerms       = errors.New("invalid loan terms")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidAssetClass  = errors.New("invalid asset class")
	ErrDepositNotFound    = errors.New("deposit not found")
	ErrLoanNotFound       = errors.New("loan not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrCollateralNotOwned = errors.New("collateral not owned by borrower")
)

// Resource errors
var (
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrReserveShortfall      = errors.New("reserve cannot cover payout")
)

type ErrorClass string

const (
	ClassAuthorization ErrorClass = "authorization"
	ClassStateConflict ErrorClass = "state_conflict"
	ClassPrecondition  ErrorClass = "precondition"
	ClassValidation    ErrorClass = "validation"
	ClassNotFound      ErrorClass = "not_found"
	ClassResource      ErrorClass = "resource"
	ClassInternal      ErrorClass = "internal"
)

var errorClasses = []struct {
	class ErrorClass
	errs  []error
}{
	{ClassAuthorization, []error{ErrUnauthorized, ErrNotOwner, ErrNotApproved}},
	{ClassStateConflict, []error{ErrAlreadyApproved, ErrAlreadyReleased, ErrAlreadyRepaid, ErrAlreadyWithdrawn, ErrCollateralAlreadyPledged}},
	{ClassPrecondition, []error{ErrInsufficientApprovals, ErrInsufficientReserve, ErrStillLocked, ErrLoanNotReleased, ErrCollateralNotVerified}},
	{ClassNotFound, []error{ErrDepositNotFound, ErrLoanNotFound, ErrAssetNotFound}},
	{ClassValidation, []error{ErrInvalidValuation, ErrLeverageExceeded, ErrInvalidAmount, ErrInvalidTerms, ErrInvalidAddress, ErrInvalidAssetClass, ErrCollateralNotOwned}},
	{ClassResource, []error{ErrInsufficientAllowance, ErrInsufficientBalance, ErrReserveShortfall}},
}

// ClassOf reports which part of the failure taxonomy err belongs to.
// Anything unrecognised is internal.
func ClassOf(err error) ErrorClass {
	for _, c := range errorClasses {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.class
			}
		}
	}
	return ClassInternal
}
