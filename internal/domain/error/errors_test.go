package error

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{ErrInvalidRequest, CodeInvalidRequest},
		{ErrInvalidAmount, CodeInvalidAmount},
		{ErrNegativeAmount, CodeInvalidAmount},
		{ErrInvalidLedgerID, CodeInvalidLedgerID},
		{ErrInvalidName, CodeInvalidName},
		{ErrNothingToSettle, CodeNothingToSettle},
		{ErrAlreadyDeleted, CodeAlreadyDeleted},
		{ErrNotDeleted, CodeNotDeleted},
		{ErrDuplicatePayment, CodeDuplicatePayment},
		{ErrLedgerLocked, CodeLedgerLocked},
		{ErrLedgerNotFound, CodeLedgerNotFound},
		{ErrStorageFailure, CodeStorageFailure},
		{ErrInternalServer, CodeInternalServer},
		{fmt.Errorf("unexpected"), CodeInternalServer},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.code, ErrorCode(tc.err))
		})
	}

	t.Run("Wrapped errors resolve to the sentinel's code", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", ErrNothingToSettle)
		assert.Equal(t, CodeNothingToSettle, ErrorCode(wrapped))
	})
}

func TestSettlementError(t *testing.T) {
	err := NewSettlementError(7, "5.00", "-2.00", ErrNothingToSettle)

	assert.ErrorIs(t, err, ErrNothingToSettle)
	assert.Contains(t, err.Error(), "ledger 7")
	assert.Contains(t, err.Error(), "5.00")

	var se *SettlementError
	assert.ErrorAs(t, err, &se)
	fields := se.LogFields()
	assert.Equal(t, uint64(7), fields["ledger_id"])
	assert.Equal(t, CodeNothingToSettle, fields["error_code"])
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrLedgerNotFound))
	assert.True(t, IsValidationError(ErrNegativeAmount))
	assert.True(t, IsValidationError(fmt.Errorf("x: %w", ErrInvalidAmount)))
	assert.True(t, IsConflictError(ErrDuplicatePayment))
	assert.True(t, IsStorageError(fmt.Errorf("x: %w", ErrStorageFailure)))

	assert.False(t, IsValidationError(ErrLedgerNotFound))
	assert.False(t, IsConflictError(ErrInvalidAmount))
}
