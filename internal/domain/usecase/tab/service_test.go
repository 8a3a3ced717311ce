package tab

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

func newService(unitPrice int64) (*Service, *testsupport.Store) {
	store := testsupport.NewStore(unitPrice)
	svc := NewService(store, store, testsupport.NewFixedClock(testTime), &testsupport.NopLogger{})
	return svc, store
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds one unit price per tap", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})

		ledger, err := svc.Increment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(150), ledger.CurrentTab)

		ledger, err = svc.Increment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(300), ledger.CurrentTab)

		// Balance and pending never move from tab activity
		assert.Equal(t, int64(0), ledger.PendingPayment)
		assert.Equal(t, int64(0), ledger.AccountBalance)
	})

	t.Run("Reads the price live on every call", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Ada"})

		_, err := svc.Increment(ctx, id)
		require.NoError(t, err)

		require.NoError(t, store.SetUnitPrice(ctx, 200))

		ledger, err := svc.Increment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(350), ledger.CurrentTab)
	})

	t.Run("Writes a user audit entry with before and after", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 300})

		_, err := svc.Increment(ctx, id)
		require.NoError(t, err)

		audits := store.Audits()
		require.Len(t, audits, 1)
		assert.Equal(t, entity.AuditTabIncrement, audits[0].Action)
		assert.Equal(t, entity.ActorUser, audits[0].Actor)
		assert.Equal(t, int64(300), audits[0].OldValue)
		assert.Equal(t, int64(450), audits[0].NewValue)
	})

	t.Run("Missing ledger", func(t *testing.T) {
		svc, _ := newService(150)
		_, err := svc.Increment(ctx, 42)
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)
	})

	t.Run("Soft-deleted ledger is not reachable", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Gone", Status: entity.LedgerDeleted})

		_, err := svc.Increment(ctx, id)
		assert.ErrorIs(t, err, errs.ErrLedgerNotFound)

		assert.Empty(t, store.Audits())
	})
}

func TestDecrement(t *testing.T) {
	ctx := context.Background()

	t.Run("Undoes one tap", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 300})

		ledger, err := svc.Decrement(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(150), ledger.CurrentTab)
	})

	t.Run("Clamps at zero", func(t *testing.T) {
		svc, store := newService(150)
		id := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 100})

		ledger, err := svc.Decrement(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ledger.CurrentTab)

		ledger, err = svc.Decrement(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), ledger.CurrentTab)

		audits := store.Audits()
		require.Len(t, audits, 2)
		assert.Equal(t, entity.AuditTabDecrement, audits[0].Action)
	})
}

func TestTabCommitFailure(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(150)
	id := store.SeedLedger(entity.Ledger{Name: "Ada", CurrentTab: 300})
	store.FailCommit = true

	_, err := svc.Increment(ctx, id)
	assert.ErrorIs(t, err, errs.ErrStorageFailure)

	ledger, _ := store.Ledger(id)
	assert.Equal(t, int64(300), ledger.CurrentTab)
	assert.Empty(t, store.Audits())
}
