package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	"github.com/coffeetab/coffeetab/internal/testsupport"
)

var testTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store    *testsupport.Store
	notifier *testsupport.ScriptedNotifier
	clock    *testsupport.FixedClock
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testsupport.NewStore(150)
	notifier := &testsupport.ScriptedNotifier{}
	clock := testsupport.NewFixedClock(testTime)
	service := NewService(store, notifier, clock, &testsupport.NopLogger{}, Config{})
	return &fixture{store: store, notifier: notifier, clock: clock, service: service}
}

func (f *fixture) seed(tab, pending, balance int64) uint64 {
	return f.store.SeedLedger(entity.Ledger{
		Name:           "Ada",
		CurrentTab:     tab,
		PendingPayment: pending,
		AccountBalance: balance,
		CreatedAt:      testTime,
		UpdatedAt:      testTime,
	})
}

func TestRequestSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("Raises obligation for full tab", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(500, 0, 0)

		result, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, int64(500), result.TotalCost)
		assert.Equal(t, int64(0), result.CreditApplied)
		assert.Equal(t, int64(500), result.AmountToPay)
		assert.True(t, result.NotificationSent)

		ledger, ok := f.store.Ledger(id)
		require.True(t, ok)
		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(500), ledger.PendingPayment)
		assert.Equal(t, int64(-500), ledger.AccountBalance)
		require.NotNil(t, ledger.LastPaymentRequest)

		payments := f.store.Payments()
		require.Len(t, payments, 1)
		assert.Equal(t, entity.PaymentRequest, payments[0].Kind)
		assert.Equal(t, int64(500), payments[0].Amount)
		assert.NotEmpty(t, payments[0].Reference)
	})

	t.Run("Applies partial credit", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(500, 0, 300)

		result, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, int64(300), result.CreditApplied)
		assert.Equal(t, int64(200), result.AmountToPay)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(200), ledger.PendingPayment)
		assert.Equal(t, int64(-200), ledger.AccountBalance)

		payments := f.store.Payments()
		require.Len(t, payments, 1)
		assert.Equal(t, int64(200), payments[0].Amount)
	})

	t.Run("Credit fully covers, no record and no notice", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(200, 0, 500)

		result, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.AmountToPay)
		assert.False(t, result.NotificationSent)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(300), ledger.AccountBalance)

		assert.Empty(t, f.store.Payments())
		assert.Empty(t, f.notifier.Calls)
	})

	t.Run("Existing debt is untouched", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(500, 0, -300)

		result, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.CreditApplied)
		assert.Equal(t, int64(500), result.AmountToPay)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(-800), ledger.AccountBalance)
	})

	t.Run("Empty tab fails and leaves ledger unchanged", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 200, 100)

		_, err := f.service.RequestSettlement(ctx, id)
		assert.ErrorIs(t, err, errs.ErrNothingToSettle)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(0), ledger.CurrentTab)
		assert.Equal(t, int64(200), ledger.PendingPayment)
		assert.Equal(t, int64(100), ledger.AccountBalance)
		assert.Empty(t, f.store.Payments())
		assert.Empty(t, f.notifier.Calls)
	})

	t.Run("Notification failure never unwinds the settlement", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.Fail = true
		id := f.seed(500, 0, 0)

		result, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		assert.False(t, result.NotificationSent)
		assert.Equal(t, int64(500), result.AmountToPay)

		// The obligation is durable despite the failed notice
		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(500), ledger.PendingPayment)
		require.Len(t, f.store.Payments(), 1)
		require.Len(t, f.notifier.Calls, 1)
	})

	t.Run("Notification is attempted exactly once per accepted request", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.Fail = true
		id := f.seed(500, 0, 0)

		_, err := f.service.RequestSettlement(ctx, id)
		require.NoError(t, err)

		// A second request finds an empty tab: no new record, no new notice
		_, err = f.service.RequestSettlement(ctx, id)
		assert.ErrorIs(t, err, errs.ErrNothingToSettle)

		assert.Len(t, f.store.Payments(), 1)
		assert.Len(t, f.notifier.Calls, 1)
	})

	t.Run("Commit failure surfaces as storage failure with no state change", func(t *testing.T) {
		f := newFixture(t)
		f.store.FailCommit = true
		id := f.seed(500, 0, 0)

		_, err := f.service.RequestSettlement(ctx, id)
		assert.ErrorIs(t, err, errs.ErrStorageFailure)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(500), ledger.CurrentTab)
		assert.Empty(t, f.store.Payments())
		assert.Empty(t, f.notifier.Calls)
	})

	t.Run("Missing ledger", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.RequestSettlement(ctx, 42)
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})

	t.Run("Soft-deleted ledger is not reachable", func(t *testing.T) {
		f := newFixture(t)
		id := f.store.SeedLedger(entity.Ledger{
			Name:       "Gone",
			CurrentTab: 500,
			Status:     entity.LedgerDeleted,
		})

		_, err := f.service.RequestSettlement(ctx, id)
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Overpayment becomes credit", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 500, -500)

		result, err := f.service.ConfirmPayment(ctx, id, "10.00", "cash box", "")
		require.NoError(t, err)

		assert.Equal(t, int64(500), result.PendingCleared)
		assert.Equal(t, int64(500), result.CreditCreated)
		assert.False(t, result.AlreadyApplied)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(500), ledger.AccountBalance)

		payments := f.store.Payments()
		require.Len(t, payments, 1)
		assert.Equal(t, entity.PaymentReceived, payments[0].Kind)
		assert.Equal(t, int64(1000), payments[0].Amount)
		assert.True(t, payments[0].ConfirmedByAdmin)
		assert.Equal(t, "cash box", payments[0].Notes)
	})

	t.Run("Invalid amounts are rejected without touching state", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 500, -500)

		for _, amount := range []string{"-1", "0", "abc", "1.234", ""} {
			_, err := f.service.ConfirmPayment(ctx, id, amount, "", "")
			assert.Error(t, err, "amount %q", amount)
			assert.True(t, errs.IsValidationError(err), "amount %q", amount)
		}

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(500), ledger.PendingPayment)
		assert.Equal(t, int64(-500), ledger.AccountBalance)
		assert.Empty(t, f.store.Payments())
	})

	t.Run("Ceiling guards against fat-finger input", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 500, -500)

		_, err := f.service.ConfirmPayment(ctx, id, "1000.01", "", "")
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		// At the ceiling is still accepted
		_, err = f.service.ConfirmPayment(ctx, id, "1000.00", "", "")
		assert.NoError(t, err)
	})

	t.Run("Repeated idempotency key does not move money twice", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 500, -500)

		first, err := f.service.ConfirmPayment(ctx, id, "5.00", "", "retry-key-1")
		require.NoError(t, err)
		assert.False(t, first.AlreadyApplied)

		second, err := f.service.ConfirmPayment(ctx, id, "5.00", "", "retry-key-1")
		require.NoError(t, err)
		assert.True(t, second.AlreadyApplied)
		assert.Equal(t, first.Payment.Reference, second.Payment.Reference)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(0), ledger.AccountBalance)
		assert.Len(t, f.store.Payments(), 1)
	})

	t.Run("Distinct keys settle independently", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 1000, -1000)

		_, err := f.service.ConfirmPayment(ctx, id, "5.00", "", "key-a")
		require.NoError(t, err)
		_, err = f.service.ConfirmPayment(ctx, id, "5.00", "", "key-b")
		require.NoError(t, err)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Len(t, f.store.Payments(), 2)
	})

	t.Run("Confirmation on ledger without pending creates pure credit", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 0, 0)

		result, err := f.service.ConfirmPayment(ctx, id, "3.00", "", "")
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.PendingCleared)
		assert.Equal(t, int64(300), result.CreditCreated)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(300), ledger.AccountBalance)
	})

	t.Run("Missing ledger", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ConfirmPayment(ctx, 42, "5.00", "", "")
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("Signed delta is applied", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 0, 100)

		ledger, err := f.service.AdjustBalance(ctx, id, "-2.50", "miscount")
		require.NoError(t, err)
		assert.Equal(t, int64(-150), ledger.AccountBalance)

		// No payment record: this is a correction, not a transaction
		assert.Empty(t, f.store.Payments())

		audits := f.store.Audits()
		require.Len(t, audits, 1)
		assert.Equal(t, entity.AuditBalanceAdjustment, audits[0].Action)
		assert.Equal(t, entity.ActorAdmin, audits[0].Actor)
		assert.Equal(t, int64(-250), audits[0].Delta)
		assert.Equal(t, "miscount", audits[0].Notes)
	})

	t.Run("Malformed delta is rejected", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(0, 0, 100)

		_, err := f.service.AdjustBalance(ctx, id, "oops", "")
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		ledger, _ := f.store.Ledger(id)
		assert.Equal(t, int64(100), ledger.AccountBalance)
	})
}

func TestSettlementRoundTrip(t *testing.T) {
	// Drive a full cycle through the service and check the §8 conservation
	// property over the recorded payment trail.
	ctx := context.Background()
	f := newFixture(t)
	id := f.seed(500, 0, 0)

	_, err := f.service.RequestSettlement(ctx, id)
	require.NoError(t, err)

	_, err = f.service.ConfirmPayment(ctx, id, "8.00", "", "")
	require.NoError(t, err)

	ledger, _ := f.store.Ledger(id)
	f.store.SeedLedger(entity.Ledger{}) // unrelated ledger must not disturb totals

	var requested, received int64
	for _, p := range f.store.Payments() {
		switch p.Kind {
		case entity.PaymentRequest:
			requested += p.Amount
		case entity.PaymentReceived:
			received += p.Amount
		}
	}

	assert.Equal(t, int64(500), requested)
	assert.Equal(t, int64(800), received)
	assert.Equal(t, received-requested, ledger.AccountBalance)
	assert.Equal(t, int64(0), ledger.PendingPayment)
}
