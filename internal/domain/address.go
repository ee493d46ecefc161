package domain

import "strings"

// Address identifies an account: a borrower, lender, auditor, the administrator or the vault.
type Address string

func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}

// ParseAddress trims and lower-cases s so hex addresses compare equal regardless of checksum casing.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return "", ErrInvalidAddress
	}
	return Address(s), nil
}
