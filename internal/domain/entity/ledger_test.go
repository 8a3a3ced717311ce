package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	"github.com/coffeetab/coffeetab/internal/domain/port/core"
)

var testTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// stubClock is a minimal TimeProvider pinned to testTime. The richer fake
// lives in testsupport, which this package cannot import without a cycle.
type stubClock struct{}

func (stubClock) Now() time.Time                 { return testTime }
func (stubClock) Since(t time.Time) core.Duration { return core.Duration(testTime.Sub(t)) }
func (stubClock) Until(t time.Time) core.Duration { return core.Duration(t.Sub(testTime)) }
func (stubClock) Sleep(core.Duration)            {}
func (stubClock) WithTimeout(ctx context.Context, _ core.Duration) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}
func (stubClock) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}

func newTestLedger(t *testing.T, tab, pending, balance int64) (*Ledger, core.TimeProvider) {
	t.Helper()
	clock := stubClock{}
	ledger, err := NewLedger("Ada", clock)
	require.NoError(t, err)
	ledger.ID = 1
	ledger.CurrentTab = tab
	ledger.PendingPayment = pending
	ledger.AccountBalance = balance
	return ledger, clock
}

func TestNewLedger(t *testing.T) {
	clock := stubClock{}

	t.Run("Starts with everything at zero", func(t *testing.T) {
		ledger, err := NewLedger("Ada", clock)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(0), ledger.AccountBalance)
		assert.Equal(t, LedgerActive, ledger.Status)
		assert.Nil(t, ledger.DeletedAt)
	})

	t.Run("Rejects empty name", func(t *testing.T) {
		_, err := NewLedger("   ", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidName)
	})
}

func TestTabMutations(t *testing.T) {
	t.Run("Increment accumulates", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 0, 0)
		ledger.AddToTab(150, clock)
		ledger.AddToTab(150, clock)
		assert.Equal(t, int64(300), ledger.CurrentTab)
	})

	t.Run("Decrement clamps at zero", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 100, 0, 0)
		ledger.SubtractFromTab(150, clock)
		assert.Equal(t, int64(0), ledger.CurrentTab)
	})
}

func TestPlanSettlement(t *testing.T) {
	testCases := []struct {
		name          string
		tab           int64
		balance       int64
		totalCost     int64
		creditApplied int64
		amountToPay   int64
	}{
		{"No credit", 500, 0, 500, 0, 500},
		{"Partial credit", 500, 300, 500, 300, 200},
		{"Credit fully covers", 200, 500, 200, 200, 0},
		{"Existing debt is not usable credit", 500, -300, 500, 0, 500},
		{"Credit exactly covers", 500, 500, 500, 500, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ledger, _ := newTestLedger(t, tc.tab, 0, tc.balance)

			plan, err := ledger.PlanSettlement()
			require.NoError(t, err)
			assert.Equal(t, tc.totalCost, plan.TotalCost)
			assert.Equal(t, tc.creditApplied, plan.CreditApplied)
			assert.Equal(t, tc.amountToPay, plan.AmountToPay)

			// Conservation: credit applied plus amount owed equals the cost
			assert.Equal(t, plan.TotalCost, plan.CreditApplied+plan.AmountToPay)
		})
	}

	t.Run("Empty tab has nothing to settle", func(t *testing.T) {
		ledger, _ := newTestLedger(t, 0, 0, 100)
		_, err := ledger.PlanSettlement()
		assert.ErrorIs(t, err, errs.ErrNothingToSettle)
	})
}

func TestApplySettlement(t *testing.T) {
	t.Run("Obligation raised", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 500, 0, 0)

		plan, err := ledger.PlanSettlement()
		require.NoError(t, err)
		ledger.ApplySettlement(plan, clock)

		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(500), ledger.PendingPayment)
		assert.Equal(t, int64(-500), ledger.AccountBalance)
		require.NotNil(t, ledger.LastPaymentRequest)
		assert.Equal(t, testTime, *ledger.LastPaymentRequest)
	})

	t.Run("Partial credit", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 500, 0, 300)

		plan, err := ledger.PlanSettlement()
		require.NoError(t, err)
		ledger.ApplySettlement(plan, clock)

		assert.Equal(t, int64(200), ledger.PendingPayment)
		assert.Equal(t, int64(-200), ledger.AccountBalance)
	})

	t.Run("Credit fully covers", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 200, 0, 500)

		plan, err := ledger.PlanSettlement()
		require.NoError(t, err)
		ledger.ApplySettlement(plan, clock)

		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(300), ledger.AccountBalance)
	})

	t.Run("Balance always drops by exactly the total cost", func(t *testing.T) {
		for _, balance := range []int64{-700, -1, 0, 250, 500, 900} {
			ledger, clock := newTestLedger(t, 500, 0, balance)
			plan, err := ledger.PlanSettlement()
			require.NoError(t, err)
			ledger.ApplySettlement(plan, clock)
			assert.Equal(t, balance-500, ledger.AccountBalance, "starting balance %d", balance)
			assert.GreaterOrEqual(t, ledger.PendingPayment, int64(0))
		}
	})
}

func TestApplyConfirmation(t *testing.T) {
	t.Run("Overpayment becomes credit", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 500, -500)

		pendingCleared, creditCreated := ledger.ApplyConfirmation(1000, clock)

		assert.Equal(t, int64(500), pendingCleared)
		assert.Equal(t, int64(500), creditCreated)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(500), ledger.AccountBalance)
	})

	t.Run("Exact payment clears pending", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 500, -500)

		pendingCleared, creditCreated := ledger.ApplyConfirmation(500, clock)

		assert.Equal(t, int64(500), pendingCleared)
		assert.Equal(t, int64(0), creditCreated)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(0), ledger.AccountBalance)
	})

	t.Run("Underpayment leaves remaining pending", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 500, -500)

		pendingCleared, creditCreated := ledger.ApplyConfirmation(200, clock)

		assert.Equal(t, int64(200), pendingCleared)
		assert.Equal(t, int64(0), creditCreated)
		assert.Equal(t, int64(300), ledger.PendingPayment)
		assert.Equal(t, int64(-300), ledger.AccountBalance)
	})
}

func TestMoneyConservationAcrossCycle(t *testing.T) {
	// Settle, confirm with overpayment, accrue again, settle again. Money is
	// conserved: received minus requested equals the balance movement plus all
	// credit consumed by settlements. Nothing leaks.
	ledger, clock := newTestLedger(t, 500, 0, 0)
	initialBalance := ledger.AccountBalance

	var requested, received, creditApplied int64

	settle := func() {
		plan, err := ledger.PlanSettlement()
		require.NoError(t, err)
		ledger.ApplySettlement(plan, clock)
		requested += plan.AmountToPay
		creditApplied += plan.CreditApplied
	}
	confirm := func(amount int64) {
		ledger.ApplyConfirmation(amount, clock)
		received += amount
	}

	settle()
	confirm(800)

	ledger.AddToTab(300, clock)
	settle()

	ledger.AddToTab(400, clock)
	settle()
	confirm(ledger.PendingPayment)

	balanceDelta := ledger.AccountBalance - initialBalance
	assert.Equal(t, received-requested, balanceDelta+creditApplied)
	assert.Equal(t, int64(0), ledger.PendingPayment)
	assert.Equal(t, int64(0), ledger.CurrentTab)
}

func TestLifecycle(t *testing.T) {
	t.Run("Soft delete preserves bookkeeping", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 300, 200, -200)

		require.NoError(t, ledger.MarkDeleted(clock))
		assert.True(t, ledger.IsDeleted())
		require.NotNil(t, ledger.DeletedAt)
		assert.Equal(t, int64(300), ledger.CurrentTab)
		assert.Equal(t, int64(200), ledger.PendingPayment)
		assert.Equal(t, int64(-200), ledger.AccountBalance)
	})

	t.Run("Double delete fails", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 0, 0)
		require.NoError(t, ledger.MarkDeleted(clock))
		assert.ErrorIs(t, ledger.MarkDeleted(clock), errs.ErrAlreadyDeleted)
	})

	t.Run("Restore requires deleted state", func(t *testing.T) {
		ledger, clock := newTestLedger(t, 0, 0, 0)
		assert.ErrorIs(t, ledger.Restore(clock), errs.ErrNotDeleted)

		require.NoError(t, ledger.MarkDeleted(clock))
		require.NoError(t, ledger.Restore(clock))
		assert.False(t, ledger.IsDeleted())
		assert.Nil(t, ledger.DeletedAt)
	})
}

func TestAdjustment(t *testing.T) {
	ledger, clock := newTestLedger(t, 0, 0, 100)
	ledger.ApplyAdjustment(-250, clock)
	assert.Equal(t, int64(-150), ledger.AccountBalance)
	ledger.ApplyAdjustment(50, clock)
	assert.Equal(t, int64(-100), ledger.AccountBalance)
}
