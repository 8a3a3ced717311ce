package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
	"github.com/coffeetab/coffeetab/internal/testsupport"
)

var testTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *testsupport.Store, *testsupport.FixedClock) {
	t.Helper()
	store := testsupport.NewStore(150)
	clock := testsupport.NewFixedClock(testTime)
	svc := NewService(store.LedgerRepo(), store.PaymentRepo(), &testsupport.NopLogger{})
	return svc, store, clock
}

func seedReceived(t *testing.T, store *testsupport.Store, clock *testsupport.FixedClock, ledgerID uint64, cents int64, notes string) *entity.Payment {
	t.Helper()
	p, err := entity.NewPaymentReceived(ledgerID, cents, notes, "", clock)
	require.NoError(t, err)
	require.NoError(t, store.PaymentRepo().Create(context.Background(), p))
	return p
}

func seedRequested(t *testing.T, store *testsupport.Store, clock *testsupport.FixedClock, ledgerID uint64, cents int64) *entity.Payment {
	t.Helper()
	p, err := entity.NewPaymentRequest(ledgerID, cents, clock)
	require.NoError(t, err)
	require.NoError(t, store.PaymentRepo().Create(context.Background(), p))
	return p
}

func TestGetSummary(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	a := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 300, PendingPayment: 500, AccountBalance: -500})
	b := store.SeedLedger(entity.Ledger{Name: "Bob", CurrentTab: 150, AccountBalance: 200})
	store.SeedLedger(entity.Ledger{Name: "Gone", CurrentTab: 999, AccountBalance: 999, Status: entity.LedgerDeleted})

	seedRequested(t, store, clock, a, 500)
	seedReceived(t, store, clock, a, 800, "")
	seedReceived(t, store, clock, b, 200, "")

	summary, err := svc.GetSummary(ctx)
	require.NoError(t, err)

	// Soft-deleted ledgers are excluded from ledger aggregates
	assert.Equal(t, int64(2), summary.ActiveLedgers)
	assert.Equal(t, int64(450), summary.OutstandingTab)
	assert.Equal(t, int64(500), summary.OutstandingPending)
	// Only positive balances count as credit; debt is not negative credit
	assert.Equal(t, int64(200), summary.TotalCredit)
	assert.Equal(t, int64(500), summary.TotalRequested)
	assert.Equal(t, int64(1000), summary.TotalReceived)
}

func TestPaymentHistory(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	a := store.SeedLedger(entity.Ledger{Name: "Ada"})
	b := store.SeedLedger(entity.Ledger{Name: "Bob"})

	seedRequested(t, store, clock, a, 500)
	clock.Advance(time.Minute)
	received := seedReceived(t, store, clock, a, 500, "cash")
	clock.Advance(time.Minute)
	seedReceived(t, store, clock, b, 300, "")

	t.Run("Newest first", func(t *testing.T) {
		payments, err := svc.PaymentHistory(ctx, persistence.PaymentFilter{})
		require.NoError(t, err)
		require.Len(t, payments, 3)
		assert.Equal(t, b, payments[0].LedgerID)
	})

	t.Run("Filter by ledger and kind", func(t *testing.T) {
		kind := entity.PaymentReceived
		payments, err := svc.PaymentHistory(ctx, persistence.PaymentFilter{LedgerID: &a, Kind: &kind})
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, received.Reference, payments[0].Reference)
	})

	t.Run("Limit caps the result", func(t *testing.T) {
		payments, err := svc.PaymentHistory(ctx, persistence.PaymentFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})

	t.Run("Time window", func(t *testing.T) {
		since := testTime.Add(30 * time.Second)
		payments, err := svc.PaymentHistory(ctx, persistence.PaymentFilter{Since: &since})
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})
}

func TestWriteHistoryCSV(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	a := store.SeedLedger(entity.Ledger{Name: "Ada"})
	seedReceived(t, store, clock, a, 1015, "cash box")

	var buf bytes.Buffer
	require.NoError(t, svc.WriteHistoryCSV(ctx, &buf, persistence.PaymentFilter{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"reference", "ledger_id", "kind", "amount", "confirmed", "notes", "created_at"}, records[0])

	row := records[1]
	assert.Equal(t, "1", row[1])
	assert.Equal(t, "received", row[2])
	assert.Equal(t, "10.15", row[3])
	assert.Equal(t, "true", row[4])
	assert.Equal(t, "cash box", row[5])
	assert.Equal(t, "2024-03-01T09:30:00Z", row[6])
}

func TestWriteHistoryCSVEmpty(t *testing.T) {
	svc, _, _ := newService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteHistoryCSV(context.Background(), &buf, persistence.PaymentFilter{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
