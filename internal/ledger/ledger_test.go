package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/credit-ledger/internal/domain"
	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin    domain.Address = "0xadmin"
	vault    domain.Address = "0xvault"
	auditorX domain.Address = "0xauditor-x"
	auditorY domain.Address = "0xauditor-y"
	auditorZ domain.Address = "0xauditor-z"
	borrower domain.Address = "0xborrower"
	lender   domain.Address = "0xlender"
	stranger domain.Address = "0xstranger"
)

const day = 24 * time.Hour

var genesis = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Dispatch(events []domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *recordingSink) ofType(typ domain.EventType) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func defaultParams() Params {
	return Params{
		Admin:              admin,
		Vault:              vault,
		ApprovalThreshold:  2,
		MaxLeverage:        10,
		MaxInterestRateBps: 5_000,
		LenderAPRBps:       500,
		TermsPolicy:        TermsFixedAtRequest,
		ReleasePolicy:      ReleaseByAnyone,
	}
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	clock  *clock.Mock
	sink   *recordingSink
	ledger *Ledger
}

func newFixture(t *testing.T, mutate ...func(*Params)) *fixture {
	t.Helper()
	p := defaultParams()
	for _, m := range mutate {
		m(&p)
	}
	mock := clock.NewMock()
	mock.Set(genesis)
	sink := &recordingSink{}
	l, err := New(p, mock, nil, sink)
	require.NoError(t, err)

	f := &fixture{t: t, ctx: context.Background(), clock: mock, sink: sink, ledger: l}
	for _, a := range []domain.Address{auditorX, auditorY, auditorZ} {
		f.must(SetAuditor{Caller: admin, Auditor: a, Enabled: true})
	}
	return f
}

func (f *fixture) exec(cmd Command) (Receipt, error) {
	return f.ledger.Execute(f.ctx, cmd)
}

func (f *fixture) must(cmd Command) Receipt {
	f.t.Helper()
	r, err := f.exec(cmd)
	require.NoError(f.t, err, cmd.Kind())
	return r
}

// collateral mints an asset for owner and grants the vault transfer rights.
func (f *fixture) collateral(owner domain.Address, valuation string) uint64 {
	f.t.Helper()
	r := f.must(MintAsset{Caller: admin, Owner: owner, Name: "press", Valuation: dec(valuation), AssetClass: domain.AssetClassEquipment})
	f.must(ApproveAsset{Caller: owner, AssetID: r.ID, Operator: vault})
	return r.ID
}

func (f *fixture) state() string {
	f.t.Helper()
	f.ledger.mu.RLock()
	defer f.ledger.mu.RUnlock()
	raw, err := json.Marshal(f.ledger.state)
	require.NoError(f.t, err)
	return string(raw)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestNew_RejectsBadParams(t *testing.T) {
	p := defaultParams()
	p.Vault = admin
	_, err := New(p, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	p = defaultParams()
	p.ApprovalThreshold = 0
	_, err = New(p, nil, nil, nil)
	assert.Error(t, err)

	p = defaultParams()
	p.TermsPolicy = "sometimes"
	_, err = New(p, nil, nil, nil)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	p := defaultParams()
	p.MaxInterestRateBps = 0
	l, err := New(p, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLockDuration, l.Params().DefaultLock)
	assert.Equal(t, uint32(domain.BpsDenominator), l.Params().MaxInterestRateBps)
}

func TestRequestLoan_LeverageCap(t *testing.T) {
	f := newFixture(t)
	first := f.collateral(borrower, "10000")
	second := f.collateral(borrower, "10000")

	r, err := f.exec(RequestLoan{Borrower: borrower, AssetID: first, Amount: dec("50000"), InterestRateBps: 800})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), r.ID)

	loan, err := f.ledger.Loan(r.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), loan.LeverageRatio)
	assert.Equal(t, domain.LoanRequested, loan.Status(2))
	assert.Zero(t, loan.ApprovalCount)

	_, err = f.exec(RequestLoan{Borrower: borrower, AssetID: second, Amount: dec("150000")})
	assert.ErrorIs(t, err, domain.ErrLeverageExceeded)

	asset, err := f.ledger.Asset(second)
	require.NoError(t, err)
	assert.False(t, asset.InCustody())
}

func TestRequestLoan_Validation(t *testing.T) {
	f := newFixture(t)
	id := f.collateral(borrower, "1000")
	unapproved := f.must(MintAsset{Caller: admin, Owner: borrower, Valuation: dec("1000")}).ID

	cases := []struct {
		name string
		cmd  RequestLoan
		want error
	}{
		{"zero amount", RequestLoan{Borrower: borrower, AssetID: id, Amount: decimal.Zero}, domain.ErrInvalidAmount},
		{"negative amount", RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("-1")}, domain.ErrInvalidAmount},
		{"too precise", RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("0.0000000000000000001")}, domain.ErrInvalidAmount},
		{"unknown asset", RequestLoan{Borrower: borrower, AssetID: 99, Amount: dec("1")}, domain.ErrAssetNotFound},
		{"not owner", RequestLoan{Borrower: stranger, AssetID: id, Amount: dec("1")}, domain.ErrCollateralNotOwned},
		{"no pledge rights", RequestLoan{Borrower: borrower, AssetID: unapproved, Amount: dec("1")}, domain.ErrNotApproved},
		{"leverage above cap", RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("1"), LeverageRatio: 11}, domain.ErrLeverageExceeded},
		{"rate above cap", RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("1"), InterestRateBps: 5_001}, domain.ErrInvalidTerms},
		{"missing borrower", RequestLoan{AssetID: id, Amount: dec("1")}, domain.ErrInvalidAddress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.state()
			_, err := f.exec(tc.cmd)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, f.state())
		})
	}
}

func TestRequestLoan_CollateralBacksOneLoan(t *testing.T) {
	f := newFixture(t)
	id := f.collateral(borrower, "1000")
	f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("500")})

	_, err := f.exec(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("500")})
	assert.ErrorIs(t, err, domain.ErrCollateralAlreadyPledged)

	_, err = f.exec(TransferAsset{Caller: borrower, AssetID: id, To: stranger})
	assert.ErrorIs(t, err, domain.ErrCollateralAlreadyPledged)

	asset, err := f.ledger.Asset(id)
	require.NoError(t, err)
	require.NotNil(t, asset.CustodyHolder)
	assert.Equal(t, vault, *asset.CustodyHolder)
	require.NotNil(t, asset.ActiveLoanID)
	assert.Equal(t, uint64(0), *asset.ActiveLoanID)
	assert.Nil(t, asset.Approved)
}

func TestReleaseFunds_NeedsQuorum(t *testing.T) {
	f := newFixture(t)
	f.must(SeedCapital{Caller: admin, Amount: dec("10000")})
	id := f.collateral(borrower, "10000")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("50000")}).ID

	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
	status, err := f.ledger.LoanStatus(loanID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoanPartiallyApproved, status)

	_, err = f.exec(ReleaseFunds{Caller: stranger, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrInsufficientApprovals)

	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID})
	status, _ = f.ledger.LoanStatus(loanID)
	assert.Equal(t, domain.LoanQuorumReached, status)

	r, err := f.exec(ReleaseFunds{Caller: stranger, LoanID: loanID})
	require.NoError(t, err)
	assertAmount(t, "50000", r.Amount)
	assertAmount(t, "50000", f.ledger.BalanceOf(borrower))
	assertAmount(t, "50000", f.ledger.TotalSupply())
	assertAmount(t, "5000", f.ledger.CommittedReserve())
	assertAmount(t, "5000", f.ledger.AvailableReserve())

	released := f.sink.ofType(domain.EventFundsReleased)
	require.Len(t, released, 1)
	assert.Equal(t, borrower, released[0].Account)
	assert.Equal(t, loanID, *released[0].LoanID)
	assertAmount(t, "50000", *released[0].Amount)
	assert.Equal(t, r.Seq, released[0].Seq)

	_, err = f.exec(ReleaseFunds{Caller: stranger, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)

	_, err = f.exec(ApproveLoan{Auditor: auditorZ, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrLoanAlreadyReleased)
	assert.ErrorIs(t, err, domain.ErrAlreadyReleased)
}

func TestReleaseFunds_ReserveCheckedAtRelease(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.LenderAPRBps = 0 })
	f.must(DepositLiquidity{Lender: lender, Amount: dec("1000"), LockSeconds: 1})
	id := f.collateral(borrower, "1000")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("5000"), LeverageRatio: 5}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID})

	f.clock.Add(time.Second)
	f.must(WithdrawLiquidity{Lender: lender, Index: 0})

	before := f.state()
	_, err := f.exec(ReleaseFunds{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrInsufficientReserve)
	assert.Equal(t, before, f.state())
	assert.True(t, f.ledger.TotalSupply().IsZero())
}

func TestReleaseFunds_ReserveRoundsUp(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.ApprovalThreshold = 1 })
	f.must(SeedCapital{Caller: admin, Amount: dec("1")})
	id := f.collateral(borrower, "1")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("1"), LeverageRatio: 3}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
	f.must(ReleaseFunds{Caller: borrower, LoanID: loanID})

	loan, err := f.ledger.Loan(loanID)
	require.NoError(t, err)
	assertAmount(t, "0.333333333333333334", loan.ReserveRequirement)
}

func TestApproveLoan_Rules(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 4; i++ {
		id := f.collateral(borrower, "100")
		f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("100")})
	}

	f.must(ApproveLoan{Auditor: auditorX, LoanID: 3})
	_, err := f.exec(ApproveLoan{Auditor: auditorX, LoanID: 3})
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)

	loan, err := f.ledger.Loan(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), loan.ApprovalCount)
	assert.True(t, loan.ApprovalsByAuditor[auditorX])

	_, err = f.exec(ApproveLoan{Auditor: stranger, LoanID: 3})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.exec(ApproveLoan{Auditor: auditorX, LoanID: 4})
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	f.must(SetAuditor{Caller: admin, Auditor: auditorY, Enabled: false})
	assert.False(t, f.ledger.IsAuditor(auditorY))
	_, err = f.exec(ApproveLoan{Auditor: auditorY, LoanID: 3})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	approved := f.sink.ofType(domain.EventLoanApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, uint32(1), *approved[0].ApprovalCount)
}

func TestApprovalCountMatchesDistinctApprovers(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.ApprovalThreshold = 3 })
	id := f.collateral(borrower, "100")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("100")}).ID

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, a := range []domain.Address{auditorX, auditorY, auditorZ} {
			wg.Add(1)
			go func(a domain.Address) {
				defer wg.Done()
				_, _ = f.exec(ApproveLoan{Auditor: a, LoanID: loanID})
			}(a)
		}
	}
	wg.Wait()

	loan, err := f.ledger.Loan(loanID)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), loan.ApprovalCount)
	assert.Len(t, loan.ApprovalsByAuditor, 3)
}

func TestSetAuditor_AdminOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec(SetAuditor{Caller: stranger, Auditor: stranger, Enabled: true})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, f.ledger.IsAuditor(stranger))

	f.must(SetAuditor{Caller: admin, Auditor: stranger, Enabled: true})
	f.must(SetAuditor{Caller: admin, Auditor: stranger, Enabled: true})
	assert.True(t, f.ledger.IsAuditor(stranger))

	changed := f.sink.ofType(domain.EventAuditorChanged)
	assert.Len(t, changed, 5)
}

func TestRepayLoan_FullCycle(t *testing.T) {
	f := newFixture(t)
	f.must(SeedCapital{Caller: admin, Amount: dec("100000")})

	asset := f.collateral(borrower, "10000")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: asset, Amount: dec("50000"), InterestRateBps: 1000}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID})
	f.must(ReleaseFunds{Caller: borrower, LoanID: loanID})

	// A second borrower funds the interest.
	otherAsset := f.collateral(stranger, "10000")
	otherLoan := f.must(RequestLoan{Borrower: stranger, AssetID: otherAsset, Amount: dec("10000")}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: otherLoan})
	f.must(ApproveLoan{Auditor: auditorY, LoanID: otherLoan})
	f.must(ReleaseFunds{Caller: stranger, LoanID: otherLoan})
	f.must(TransferCredit{From: stranger, To: borrower, Amount: dec("5000")})

	f.clock.Add(365 * day)
	owed, err := f.ledger.AmountOwed(loanID)
	require.NoError(t, err)
	assertAmount(t, "55000", owed)

	_, err = f.exec(RepayLoan{Caller: stranger, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = f.exec(RepayLoan{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	f.must(ApproveCredit{Owner: borrower, Spender: vault, Amount: dec("55000")})
	r, err := f.exec(RepayLoan{Caller: borrower, LoanID: loanID})
	require.NoError(t, err)
	assertAmount(t, "55000", r.Amount)

	assert.True(t, f.ledger.BalanceOf(borrower).IsZero())
	assert.True(t, f.ledger.Allowance(borrower, vault).IsZero())
	assertAmount(t, "5000", f.ledger.BalanceOf(vault))
	assertAmount(t, "10000", f.ledger.TotalSupply())
	assertAmount(t, "1000", f.ledger.CommittedReserve())

	a, err := f.ledger.Asset(asset)
	require.NoError(t, err)
	assert.Nil(t, a.CustodyHolder)
	assert.Nil(t, a.ActiveLoanID)
	assert.Equal(t, borrower, a.Owner)

	status, _ := f.ledger.LoanStatus(loanID)
	assert.Equal(t, domain.LoanRepaid, status)

	_, err = f.exec(RepayLoan{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrAlreadyRepaid)

	require.Len(t, f.sink.ofType(domain.EventRepaymentReceived), 1)
	require.Len(t, f.sink.ofType(domain.EventCollateralReleased), 1)

	// Collateral is free to back a new loan.
	f.must(ApproveAsset{Caller: borrower, AssetID: asset, Operator: vault})
	f.must(RequestLoan{Borrower: borrower, AssetID: asset, Amount: dec("1")})
}

func TestRepayLoan_BeforeRelease(t *testing.T) {
	f := newFixture(t)
	id := f.collateral(borrower, "100")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("100")}).ID

	_, err := f.exec(RepayLoan{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrLoanNotReleased)

	_, err = f.ledger.AmountOwed(loanID)
	assert.ErrorIs(t, err, domain.ErrLoanNotReleased)
}

func TestRepayLoan_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.must(SeedCapital{Caller: admin, Amount: dec("1000")})
	id := f.collateral(borrower, "1000")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("1000"), InterestRateBps: 100}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID})
	f.must(ReleaseFunds{Caller: borrower, LoanID: loanID})
	f.must(ApproveCredit{Owner: borrower, Spender: vault, Amount: dec("2000")})

	f.clock.Add(30 * day)
	before := f.state()
	_, err := f.exec(RepayLoan{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, before, f.state())
}

func TestTotalSupplyMonotonicity(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.ApprovalThreshold = 1 })
	f.must(SeedCapital{Caller: admin, Amount: dec("1000")})

	supply := f.ledger.TotalSupply()
	for i := 0; i < 3; i++ {
		id := f.collateral(borrower, "100")
		loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("100")}).ID
		f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})
		f.must(ReleaseFunds{Caller: borrower, LoanID: loanID})
		assert.True(t, f.ledger.TotalSupply().GreaterThan(supply))
		supply = f.ledger.TotalSupply()

		f.must(TransferCredit{From: borrower, To: stranger, Amount: dec("10")})
		f.must(ApproveCredit{Owner: stranger, Spender: lender, Amount: dec("10")})
		f.must(TransferCreditFrom{Spender: lender, Owner: stranger, To: borrower, Amount: dec("10")})
		assert.True(t, f.ledger.TotalSupply().Equal(supply))
	}

	f.must(ApproveCredit{Owner: borrower, Spender: vault, Amount: dec("300")})
	for id := uint64(0); id < 3; id++ {
		f.must(RepayLoan{Caller: borrower, LoanID: id})
		assert.True(t, f.ledger.TotalSupply().LessThan(supply))
		supply = f.ledger.TotalSupply()
	}
	assert.True(t, supply.IsZero())
}

func TestWithdrawLiquidity_LockedForThirtyDays(t *testing.T) {
	f := newFixture(t)
	f.must(SeedCapital{Caller: admin, Amount: dec("100")})
	r := f.must(DepositLiquidity{Lender: lender, Amount: dec("200"), LockSeconds: int64((30 * day).Seconds())})
	assert.Equal(t, uint64(0), r.ID)

	f.clock.Add(29 * day)
	_, err := f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	assert.ErrorIs(t, err, domain.ErrStillLocked)

	f.clock.Add(day)
	r, err = f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	require.NoError(t, err)
	assert.True(t, r.Amount.GreaterThan(dec("200")))
	// 200 * 500 bps * 30 days
	assertAmount(t, "200.821917808219178082", r.Amount)

	d, err := f.ledger.Deposit(lender, 0)
	require.NoError(t, err)
	assert.True(t, d.Withdrawn)
	assert.True(t, d.Payout.Equal(r.Amount))

	_, err = f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	assert.ErrorIs(t, err, domain.ErrAlreadyWithdrawn)
}

func TestWithdrawLiquidity_LockBoundary(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.LenderAPRBps = 0 })
	f.must(DepositLiquidity{Lender: lender, Amount: dec("10"), LockSeconds: 100})

	f.clock.Add(99 * time.Second)
	_, err := f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	assert.ErrorIs(t, err, domain.ErrStillLocked)

	f.clock.Add(time.Second)
	r, err := f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	require.NoError(t, err)
	assertAmount(t, "10", r.Amount)
}

func TestDepositLiquidity(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(DepositLiquidity{Lender: lender, Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.exec(DepositLiquidity{Lender: lender, Amount: dec("1"), LockSeconds: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	f.must(DepositLiquidity{Lender: lender, Amount: dec("1")})
	second := f.must(DepositLiquidity{Lender: lender, Amount: dec("2"), LockSeconds: 60})
	assert.Equal(t, uint64(1), second.ID)
	assert.Equal(t, uint64(2), f.ledger.DepositCount(lender))
	assert.Zero(t, f.ledger.DepositCount(stranger))

	d, err := f.ledger.Deposit(lender, 0)
	require.NoError(t, err)
	assert.Equal(t, genesis.Add(DefaultLockDuration), d.LockUntil)

	_, err = f.ledger.Deposit(lender, 2)
	assert.ErrorIs(t, err, domain.ErrDepositNotFound)
	_, err = f.exec(WithdrawLiquidity{Lender: stranger, Index: 0})
	assert.ErrorIs(t, err, domain.ErrDepositNotFound)

	assertAmount(t, "3", f.ledger.PoolBalance())
	assert.Len(t, f.sink.ofType(domain.EventDepositMade), 2)
}

func TestDepositLiquidity_LockBeyondDurationRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(DepositLiquidity{Lender: lender, Amount: dec("5"), LockSeconds: 9_300_000_000})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.exec(DepositLiquidity{Lender: lender, Amount: dec("5"), LockSeconds: math.MaxInt64})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Zero(t, f.ledger.DepositCount(lender))

	r := f.must(DepositLiquidity{Lender: lender, Amount: dec("5"), LockSeconds: maxLockSeconds})
	d, err := f.ledger.Deposit(lender, r.ID)
	require.NoError(t, err)
	assert.True(t, d.LockUntil.After(genesis))

	_, err = f.exec(WithdrawLiquidity{Lender: lender, Index: r.ID})
	assert.ErrorIs(t, err, domain.ErrStillLocked)
}

func TestWithdrawLiquidity_AccrualErrorIsReported(t *testing.T) {
	f := newFixture(t)
	f.must(SeedCapital{Caller: admin, Amount: dec("100")})
	f.must(DepositLiquidity{Lender: lender, Amount: dec("10"), LockSeconds: 1})
	f.clock.Add(day)

	f.ledger.mu.Lock()
	f.ledger.state.Pool.Deposits[lender][0].Amount = dec("-10")
	f.ledger.mu.Unlock()

	_, err := f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	id := f.collateral(borrower, "100")
	loan := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("10")})
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loan.ID})
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loan.ID})
	_, err = f.exec(ReleaseFunds{Caller: borrower, LoanID: loan.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, f.ledger.TotalSupply().IsZero())
}

func TestWithdrawLiquidity_ReserveShortfall(t *testing.T) {
	f := newFixture(t)
	f.must(DepositLiquidity{Lender: lender, Amount: dec("100"), LockSeconds: 1})
	f.clock.Add(365 * day)

	assertAmount(t, "95", f.ledger.AvailableReserve())

	_, err := f.exec(WithdrawLiquidity{Lender: lender, Index: 0})
	assert.ErrorIs(t, err, domain.ErrReserveShortfall)

	f.must(SeedCapital{Caller: admin, Amount: dec("5")})
	r := f.must(WithdrawLiquidity{Lender: lender, Index: 0})
	assertAmount(t, "105", r.Amount)
	assert.True(t, f.ledger.PoolBalance().IsZero())
}

func TestSeedCapital_AdminOnly(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec(SeedCapital{Caller: lender, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCollateral_CustodyRoundTrip(t *testing.T) {
	f := newFixture(t)
	const custodian domain.Address = "0xcustodian"
	id := f.must(MintAsset{Caller: admin, Owner: borrower, Valuation: dec("1")}).ID

	a, err := f.ledger.Asset(id)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetClassHardware, a.AssetClass)
	assert.True(t, a.Verified)

	_, err = f.exec(PledgeAsset{Caller: borrower, AssetID: id, Custodian: custodian})
	assert.ErrorIs(t, err, domain.ErrNotApproved)

	_, err = f.exec(ApproveAsset{Caller: stranger, AssetID: id, Operator: custodian})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	f.must(ApproveAsset{Caller: borrower, AssetID: id, Operator: custodian})
	_, err = f.exec(PledgeAsset{Caller: stranger, AssetID: id, Custodian: custodian})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	f.must(PledgeAsset{Caller: borrower, AssetID: id, Custodian: custodian})
	_, err = f.exec(TransferAsset{Caller: borrower, AssetID: id, To: stranger})
	assert.ErrorIs(t, err, domain.ErrCollateralAlreadyPledged)

	_, err = f.exec(ReleaseAsset{Caller: borrower, AssetID: id})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	f.must(ReleaseAsset{Caller: custodian, AssetID: id})
	a, _ = f.ledger.Asset(id)
	assert.Nil(t, a.CustodyHolder)
	assert.Equal(t, borrower, a.Owner)

	f.must(TransferAsset{Caller: borrower, AssetID: id, To: stranger})
	a, _ = f.ledger.Asset(id)
	assert.Equal(t, stranger, a.Owner)
}

func TestCollateral_VaultCustodyOnlyThroughLoans(t *testing.T) {
	f := newFixture(t)
	id := f.collateral(borrower, "1")
	_, err := f.exec(PledgeAsset{Caller: borrower, AssetID: id, Custodian: vault})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMintAsset_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(MintAsset{Caller: stranger, Owner: borrower, Valuation: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.exec(MintAsset{Caller: admin, Owner: borrower, Valuation: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidValuation)
	_, err = f.exec(MintAsset{Caller: admin, Owner: borrower, Valuation: dec("1"), AssetClass: "SPACESHIP"})
	assert.ErrorIs(t, err, domain.ErrInvalidAssetClass)

	r := f.must(MintAsset{Caller: admin, Owner: borrower, Valuation: dec("0"), AssetClass: domain.AssetClassVehicle})
	assert.Equal(t, uint64(0), r.ID)
	_, err = f.ledger.Asset(1)
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestRequestLoan_RequiresVerifiedCollateral(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.RequireVerifiedCollateral = true })
	id := f.collateral(borrower, "100")

	_, err := f.exec(SetAssetVerified{Caller: stranger, AssetID: id, Verified: false})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	f.must(SetAssetVerified{Caller: admin, AssetID: id, Verified: false})
	_, err = f.exec(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("10")})
	assert.ErrorIs(t, err, domain.ErrCollateralNotVerified)

	f.must(SetAssetVerified{Caller: admin, AssetID: id, Verified: true})
	f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("10")})
}

func TestTermsSetByFirstApprover(t *testing.T) {
	f := newFixture(t, func(p *Params) { p.TermsPolicy = TermsSetByFirstApprover })
	id := f.collateral(borrower, "1000")

	_, err := f.exec(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("4000"), LeverageRatio: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidTerms)

	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("4000")}).ID
	loan, _ := f.ledger.Loan(loanID)
	assert.False(t, loan.TermsFixed)

	_, err = f.exec(ApproveLoan{Auditor: auditorX, LoanID: loanID, InterestRateBps: 700})
	assert.ErrorIs(t, err, domain.ErrInvalidTerms)
	_, err = f.exec(ApproveLoan{Auditor: auditorX, LoanID: loanID, InterestRateBps: 700, LeverageRatio: 3})
	assert.ErrorIs(t, err, domain.ErrLeverageExceeded)

	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID, InterestRateBps: 700, LeverageRatio: 5})
	loan, _ = f.ledger.Loan(loanID)
	assert.True(t, loan.TermsFixed)
	assert.Equal(t, uint32(700), loan.InterestRateBps)
	assert.Equal(t, uint32(5), loan.LeverageRatio)

	_, err = f.exec(ApproveLoan{Auditor: auditorY, LoanID: loanID, LeverageRatio: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidTerms)
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID, InterestRateBps: 700})

	loan, _ = f.ledger.Loan(loanID)
	assert.Equal(t, uint32(2), loan.ApprovalCount)
	assert.Equal(t, uint32(5), loan.LeverageRatio)
}

func TestReleaseByAuditorsOnly(t *testing.T) {
	f := newFixture(t, func(p *Params) {
		p.ReleasePolicy = ReleaseByAuditorsOnly
		p.ApprovalThreshold = 1
	})
	f.must(SeedCapital{Caller: admin, Amount: dec("100")})
	id := f.collateral(borrower, "100")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("100")}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})

	_, err := f.exec(ReleaseFunds{Caller: borrower, LoanID: loanID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	f.must(ReleaseFunds{Caller: auditorZ, LoanID: loanID})
}

func TestVaultCannotCall(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec(TransferCredit{From: vault, To: stranger, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.exec(DepositLiquidity{Lender: vault, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreditToken_Transfers(t *testing.T) {
	f := newFixture(t)

	_, err := f.exec(TransferCredit{From: borrower, To: stranger, Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	_, err = f.exec(TransferCredit{From: borrower, To: stranger, Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.exec(ApproveCredit{Owner: borrower, Spender: stranger, Amount: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	f.must(ApproveCredit{Owner: borrower, Spender: stranger, Amount: dec("5")})
	assertAmount(t, "5", f.ledger.Allowance(borrower, stranger))

	_, err = f.exec(TransferCreditFrom{Spender: stranger, Owner: borrower, To: stranger, Amount: dec("6")})
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)
	_, err = f.exec(TransferCreditFrom{Spender: stranger, Owner: borrower, To: stranger, Amount: dec("5")})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	f.must(ApproveCredit{Owner: borrower, Spender: stranger, Amount: decimal.Zero})
	assert.True(t, f.ledger.Allowance(borrower, stranger).IsZero())
}

type reentrantSink struct {
	ledger *Ledger
	errs   []error
}

func (s *reentrantSink) Dispatch(events []domain.Event) {
	for _, e := range events {
		if e.Type == domain.EventFundsReleased {
			_, err := s.ledger.Execute(context.Background(), ReleaseFunds{Caller: stranger, LoanID: *e.LoanID})
			s.errs = append(s.errs, err)
		}
	}
}

func TestReleaseFunds_ReentrantSinkSeesPostState(t *testing.T) {
	p := defaultParams()
	p.ApprovalThreshold = 1
	sink := &reentrantSink{}
	l, err := New(p, clock.NewMock(), nil, sink)
	require.NoError(t, err)
	sink.ledger = l
	ctx := context.Background()

	steps := []Command{
		SetAuditor{Caller: admin, Auditor: auditorX, Enabled: true},
		SeedCapital{Caller: admin, Amount: dec("100")},
		MintAsset{Caller: admin, Owner: borrower, Valuation: dec("100")},
		ApproveAsset{Caller: borrower, AssetID: 0, Operator: vault},
		RequestLoan{Borrower: borrower, AssetID: 0, Amount: dec("100")},
		ApproveLoan{Auditor: auditorX, LoanID: 0},
		ReleaseFunds{Caller: borrower, LoanID: 0},
	}
	for _, cmd := range steps {
		_, err := l.Execute(ctx, cmd)
		require.NoError(t, err, cmd.Kind())
	}

	require.Len(t, sink.errs, 1)
	assert.ErrorIs(t, sink.errs[0], domain.ErrAlreadyReleased)
	assertAmount(t, "100", l.BalanceOf(borrower))
	assertAmount(t, "100", l.TotalSupply())
}

type memJournal struct {
	mu        sync.Mutex
	entries   []*domain.JournalEntry
	snapshots []*domain.Snapshot
	failNext  bool
}

func (j *memJournal) Append(_ context.Context, entry *domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failNext {
		j.failNext = false
		return errors.New("disk full")
	}
	j.entries = append(j.entries, entry)
	return nil
}

func (j *memJournal) EntriesAfter(_ context.Context, seq uint64) ([]*domain.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*domain.JournalEntry
	for _, e := range j.entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *memJournal) SaveSnapshot(_ context.Context, s *domain.Snapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.snapshots = append(j.snapshots, s)
	return nil
}

func (j *memJournal) LatestSnapshot(context.Context) (*domain.Snapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.snapshots) == 0 {
		return nil, nil
	}
	return j.snapshots[len(j.snapshots)-1], nil
}

func TestJournalFailureLeavesStateUnchanged(t *testing.T) {
	journal := &memJournal{}
	mock := clock.NewMock()
	sink := &recordingSink{}
	l, err := New(defaultParams(), mock, journal, sink)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = l.Execute(ctx, SeedCapital{Caller: admin, Amount: dec("10")})
	require.NoError(t, err)

	journal.failNext = true
	_, err = l.Execute(ctx, SeedCapital{Caller: admin, Amount: dec("10")})
	assert.ErrorIs(t, err, ErrJournal)
	assertAmount(t, "10", l.PoolBalance())
	assert.Equal(t, uint64(1), l.Seq())
	assert.Len(t, sink.events, 1)

	r, err := l.Execute(ctx, SeedCapital{Caller: admin, Amount: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.Seq)
	require.Len(t, journal.entries, 2)
	assert.Equal(t, KindSeedCapital, journal.entries[1].Kind)
	assert.NotEmpty(t, journal.entries[1].CommandID)
}

func TestRestore_ReplaysJournalAfterSnapshot(t *testing.T) {
	journal := &memJournal{}
	mock := clock.NewMock()
	mock.Set(genesis)
	l, err := New(defaultParams(), mock, journal, nil)
	require.NoError(t, err)
	f := &fixture{t: t, ctx: context.Background(), clock: mock, sink: &recordingSink{}, ledger: l}

	f.must(SetAuditor{Caller: admin, Auditor: auditorX, Enabled: true})
	f.must(SetAuditor{Caller: admin, Auditor: auditorY, Enabled: true})
	f.must(SeedCapital{Caller: admin, Amount: dec("1000")})
	f.must(DepositLiquidity{Lender: lender, Amount: dec("10000"), LockSeconds: 3600})
	asset := f.collateral(borrower, "1000")
	loanID := f.must(RequestLoan{Borrower: borrower, AssetID: asset, Amount: dec("5000"), InterestRateBps: 900}).ID
	f.must(ApproveLoan{Auditor: auditorX, LoanID: loanID})

	snap, err := l.Snapshot(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, l.Seq(), snap.Seq)

	mock.Add(2 * time.Hour)
	f.must(ApproveLoan{Auditor: auditorY, LoanID: loanID})
	f.must(ReleaseFunds{Caller: borrower, LoanID: loanID})
	mock.Add(90 * day)
	f.must(WithdrawLiquidity{Lender: lender, Index: 0})
	want := f.state()

	restored, err := New(defaultParams(), mock, journal, nil)
	require.NoError(t, err)
	seq, err := restored.Restore(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, l.Seq(), seq)

	g := &fixture{t: t, ledger: restored}
	assert.JSONEq(t, want, g.state())

	// Full replay without the snapshot lands on the same state.
	journal.snapshots = nil
	fromScratch, err := New(defaultParams(), mock, journal, nil)
	require.NoError(t, err)
	_, err = fromScratch.Restore(f.ctx)
	require.NoError(t, err)
	assert.JSONEq(t, want, (&fixture{t: t, ledger: fromScratch}).state())
}

func TestRestore_DetectsGap(t *testing.T) {
	journal := &memJournal{}
	l, err := New(defaultParams(), clock.NewMock(), journal, nil)
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := l.Execute(ctx, SeedCapital{Caller: admin, Amount: dec("1")})
		require.NoError(t, err)
	}
	journal.entries = append(journal.entries[:1], journal.entries[2:]...)

	restored, err := New(defaultParams(), clock.NewMock(), journal, nil)
	require.NoError(t, err)
	_, err = restored.Restore(ctx)
	assert.ErrorContains(t, err, "journal gap")
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand(KindRequestLoan, []byte(`{"borrower":"0xb","asset_id":4,"amount":"12.5","leverage_ratio":3}`))
	require.NoError(t, err)
	req, ok := cmd.(*RequestLoan)
	require.True(t, ok)
	assert.Equal(t, domain.Address("0xb"), req.Borrower)
	assert.Equal(t, uint64(4), req.AssetID)
	assertAmount(t, "12.5", req.Amount)

	_, err = DecodeCommand("launch_rocket", []byte(`{}`))
	assert.Error(t, err)
}

func TestLoans_Paging(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		id := f.collateral(borrower, "10")
		f.must(RequestLoan{Borrower: borrower, AssetID: id, Amount: dec("10")})
	}
	assert.Equal(t, 5, f.ledger.LoanCount())

	page := f.ledger.Loans(1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(1), page[0].ID)
	assert.Equal(t, uint64(2), page[1].ID)
	assert.Len(t, f.ledger.Loans(3, 0), 2)
	assert.Len(t, f.ledger.Loans(1, math.MaxInt), 4)
	assert.Empty(t, f.ledger.Loans(9, 1))

	// Callers get copies.
	page[0].ApprovalsByAuditor[stranger] = true
	loan, _ := f.ledger.Loan(1)
	assert.Empty(t, loan.ApprovalsByAuditor)
}

func TestConcurrentCommitsReachSinkInSeqOrder(t *testing.T) {
	f := newFixture(t)
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.exec(DepositLiquidity{Lender: lender, Amount: dec("1")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, f.sink.ofType(domain.EventDepositMade), n)
	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	for i := 1; i < len(f.sink.events); i++ {
		assert.LessOrEqual(t, f.sink.events[i-1].Seq, f.sink.events[i].Seq)
	}
	assert.Equal(t, f.ledger.Seq(), f.sink.events[len(f.sink.events)-1].Seq)
}
