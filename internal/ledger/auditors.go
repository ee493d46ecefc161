package ledger

import "github.com/LavaJover/credit-ledger/internal/domain"

// auditorSet is flat membership: every auditor's approval weighs the same.
type auditorSet struct {
	Members map[domain.Address]bool `json:"members"`
}

func (a *auditorSet) isAuditor(addr domain.Address) bool {
	return a.Members[addr]
}

func (a *auditorSet) set(addr domain.Address, enabled bool) {
	if enabled {
		a.Members[addr] = true
		return
	}
	delete(a.Members, addr)
}
