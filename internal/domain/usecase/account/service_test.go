package account

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

func newService() (*Service, *testsupport.Store) {
	store := testsupport.NewStore(150)
	svc := NewService(store, store.LedgerRepo(), testsupport.NewFixedClock(testTime), &testsupport.NopLogger{})
	return svc, store
}

func TestCreateLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts zeroed and active", func(t *testing.T) {
		svc, store := newService()

		ledger, err := svc.CreateLedger(ctx, "Ada")
		require.NoError(t, err)
		assert.NotZero(t, ledger.ID)
		assert.Equal(t, "Ada", ledger.Name)
		assert.Equal(t, entity.LedgerActive, ledger.Status)
		assert.Equal(t, int64(0), ledger.CurrentTab)

		stored, ok := store.Ledger(ledger.ID)
		require.True(t, ok)
		assert.Equal(t, "Ada", stored.Name)
	})

	t.Run("Rejects blank name", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.CreateLedger(ctx, "  ")
		assert.ErrorIs(t, err, errs.ErrInvalidName)
	})
}

func TestListLedgers(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	store.SeedLedger(entity.Ledger{Name: "carol"})
	store.SeedLedger(entity.Ledger{Name: "Ada"})
	store.SeedLedger(entity.Ledger{Name: "Bob", Status: entity.LedgerDeleted})

	t.Run("Active only, ordered by name", func(t *testing.T) {
		ledgers, err := svc.ListLedgers(ctx, false)
		require.NoError(t, err)
		require.Len(t, ledgers, 2)
		assert.Equal(t, "Ada", ledgers[0].Name)
		assert.Equal(t, "carol", ledgers[1].Name)
	})

	t.Run("Deleted included on request", func(t *testing.T) {
		ledgers, err := svc.ListLedgers(ctx, true)
		require.NoError(t, err)
		assert.Len(t, ledgers, 3)
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("Soft delete keeps bookkeeping and audits the transition", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 300, PendingPayment: 200, AccountBalance: -200})

		ledger, err := svc.SoftDelete(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.LedgerDeleted, ledger.Status)
		require.NotNil(t, ledger.DeletedAt)
		assert.Equal(t, int64(300), ledger.CurrentTab)
		assert.Equal(t, int64(-200), ledger.AccountBalance)

		audits := store.Audits()
		require.Len(t, audits, 1)
		assert.Equal(t, entity.AuditSoftDelete, audits[0].Action)
		assert.Equal(t, entity.ActorUser, audits[0].Actor)
	})

	t.Run("Double delete fails", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})

		_, err := svc.SoftDelete(ctx, id)
		require.NoError(t, err)
		_, err = svc.SoftDelete(ctx, id)
		assert.ErrorIs(t, err, errs.ErrAlreadyDeleted)
	})

	t.Run("Restore round-trips", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada", AccountBalance: 500})

		_, err := svc.SoftDelete(ctx, id)
		require.NoError(t, err)

		ledger, err := svc.Restore(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.LedgerActive, ledger.Status)
		assert.Nil(t, ledger.DeletedAt)
		assert.Equal(t, int64(500), ledger.AccountBalance)

		audits := store.Audits()
		require.Len(t, audits, 2)
		assert.Equal(t, entity.AuditRestore, audits[1].Action)
		assert.Equal(t, entity.ActorAdmin, audits[1].Actor)
	})

	t.Run("Restore of an active ledger fails", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})

		_, err := svc.Restore(ctx, id)
		assert.ErrorIs(t, err, errs.ErrNotDeleted)
	})
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Purges the row, payments, and prior audit trail", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada", AccountBalance: 300})
		other := store.SeedLedger(entity.Ledger{Name: "Bob"})

		clock := testsupport.NewFixedClock(testTime)
		seedPayment := func(ledgerID uint64) {
			p, err := entity.NewPaymentRequest(ledgerID, 500, clock)
			require.NoError(t, err)
			require.NoError(t, store.PaymentRepo().Create(ctx, p))
		}
		seedPayment(id)
		seedPayment(other)
		require.NoError(t, store.AuditRepo().Append(ctx, entity.NewAuditEntry(id, entity.AuditTabIncrement, entity.ActorUser, 0, 150, clock)))

		require.NoError(t, svc.HardDelete(ctx, id))

		_, ok := store.Ledger(id)
		assert.False(t, ok)

		// Other ledgers' records are untouched
		payments := store.Payments()
		require.Len(t, payments, 1)
		assert.Equal(t, other, payments[0].LedgerID)

		// The purge itself leaves exactly one forensic entry
		audits := store.Audits()
		require.Len(t, audits, 1)
		assert.Equal(t, entity.AuditHardDelete, audits[0].Action)
		assert.Equal(t, entity.ActorAdmin, audits[0].Actor)
		assert.Equal(t, id, audits[0].LedgerID)
		assert.Equal(t, int64(300), audits[0].OldValue)
	})

	t.Run("GetLedger reports purged as not found", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})

		require.NoError(t, svc.HardDelete(ctx, id))

		_, err := svc.GetLedger(ctx, id)
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})

	t.Run("Works on soft-deleted ledgers", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada", Status: entity.LedgerDeleted})

		require.NoError(t, svc.HardDelete(ctx, id))
		_, ok := store.Ledger(id)
		assert.False(t, ok)
	})

	t.Run("Commit failure leaves everything in place", func(t *testing.T) {
		svc, store := newService()
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})
		store.FailCommit = true

		err := svc.HardDelete(ctx, id)
		assert.ErrorIs(t, err, errs.ErrStorageFailure)

		_, ok := store.Ledger(id)
		assert.True(t, ok)
	})
}
