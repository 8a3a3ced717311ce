package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest   = 4000
	CodeInvalidAmount    = 4001
	CodeInvalidLedgerID  = 4002
	CodeInvalidName      = 4003
	CodeNothingToSettle  = 4004
	CodeAlreadyDeleted   = 4005
	CodeNotDeleted       = 4006
	CodeDuplicatePayment = 4090
	CodeLedgerLocked     = 4230
	CodeLedgerNotFound   = 4040

	// 5xxx - Server errors
	CodeStorageFailure = 5001
	CodeInternalServer = 5000
)

// Base error types
var (
	// ErrLedgerNotFound is returned when the requested ledger doesn't exist or was purged
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrInvalidRequest is returned when the request body or headers are malformed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidAmount is returned when a monetary amount is malformed, non-positive
	// where positivity is required, or above the configured ceiling
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeAmount is returned when an amount that must be non-negative is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidLedgerID is returned when the ledger ID is not a positive integer
	ErrInvalidLedgerID = errors.New("ledger ID must be positive")

	// ErrInvalidName is returned when a ledger name is empty
	ErrInvalidName = errors.New("name cannot be empty")

	// ErrNothingToSettle is returned when a settlement is requested on an empty tab
	ErrNothingToSettle = errors.New("nothing to settle")

	// ErrAlreadyDeleted is returned when soft-deleting an already deleted ledger
	ErrAlreadyDeleted = errors.New("ledger is already deleted")

	// ErrNotDeleted is returned when restoring a ledger that is not deleted
	ErrNotDeleted = errors.New("ledger is not deleted")

	// ErrDuplicatePayment is returned when a payment with the same idempotency key
	// already exists
	ErrDuplicatePayment = errors.New("payment with this idempotency key already exists")

	// ErrLedgerLocked is returned when a ledger row is locked by another operation
	ErrLedgerLocked = errors.New("ledger is locked by another operation")

	// ErrStorageFailure is returned when a transaction could not commit.
	// No partial state change is ever visible behind this error.
	ErrStorageFailure = errors.New("storage failure")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidLedgerID):
		return CodeInvalidLedgerID
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrNothingToSettle):
		return CodeNothingToSettle
	case errors.Is(err, ErrAlreadyDeleted):
		return CodeAlreadyDeleted
	case errors.Is(err, ErrNotDeleted):
		return CodeNotDeleted
	case errors.Is(err, ErrDuplicatePayment):
		return CodeDuplicatePayment
	case errors.Is(err, ErrLedgerLocked):
		return CodeLedgerLocked
	case errors.Is(err, ErrLedgerNotFound):
		return CodeLedgerNotFound
	case errors.Is(err, ErrStorageFailure):
		return CodeStorageFailure
	default:
		return CodeInternalServer
	}
}

// SettlementError carries ledger context for settlement failures
type SettlementError struct {
	LedgerID uint64
	Tab      string
	Balance  string
	Err      error
}

// Error implements the error interface
func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed for ledger %d (tab: %s, balance: %s): %v",
		e.LedgerID, e.Tab, e.Balance, e.Err)
}

// Unwrap returns the underlying error
func (e *SettlementError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *SettlementError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "settlement_error",
		"ledger_id":  e.LedgerID,
		"tab":        e.Tab,
		"balance":    e.Balance,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewSettlementError wraps err with ledger context
func NewSettlementError(ledgerID uint64, tab, balance string, err error) error {
	return &SettlementError{
		LedgerID: ledgerID,
		Tab:      tab,
		Balance:  balance,
		Err:      err,
	}
}

// IsNotFoundError checks if the error is a ledger not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLedgerNotFound)
}

// IsValidationError checks if the error is a client input problem
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrInvalidLedgerID) ||
		errors.Is(err, ErrInvalidName)
}

// IsConflictError checks if the error represents a state conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyDeleted) ||
		errors.Is(err, ErrNotDeleted) ||
		errors.Is(err, ErrDuplicatePayment) ||
		errors.Is(err, ErrLedgerLocked)
}

// IsStorageError checks if the error came from the storage layer
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}
