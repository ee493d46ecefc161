package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits every amount is representable in.
const AmountScale int32 = 18

const (
	BpsDenominator = 10_000
	SecondsPerYear = 365 * 24 * 60 * 60
)

// ParseAmount parses a decimal string into a non-negative fixed-point amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !IsRepresentable(d) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// IsRepresentable reports whether d is non-negative and fits in AmountScale fractional digits.
func IsRepresentable(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(AmountScale))
}

// SimpleInterest returns principal * rateBps * elapsedSeconds / (10_000 * SecondsPerYear),
// rounded down to AmountScale.
func SimpleInterest(principal decimal.Decimal, rateBps uint32, elapsedSeconds int64) (decimal.Decimal, error) {
	if principal.IsNegative() || elapsedSeconds < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative interest input", ErrInvalidAmount)
	}
	if principal.IsZero() || rateBps == 0 || elapsedSeconds == 0 {
		return decimal.Zero, nil
	}
	num := principal.
		Mul(decimal.NewFromInt(int64(rateBps))).
		Mul(decimal.NewFromInt(elapsedSeconds))
	q, _ := num.QuoRem(decimal.NewFromInt(BpsDenominator*SecondsPerYear), AmountScale)
	return q, nil
}

// CeilDiv divides amount by a positive integer and rounds up to AmountScale.
func CeilDiv(amount decimal.Decimal, by uint32) decimal.Decimal {
	q, r := amount.QuoRem(decimal.NewFromInt(int64(by)), AmountScale)
	if !r.IsZero() {
		q = q.Add(decimal.New(1, -AmountScale))
	}
	return q
}
