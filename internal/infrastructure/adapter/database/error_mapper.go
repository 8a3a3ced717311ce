package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrLedgerNotFound
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	// Row lock contention from concurrent settlements
	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serialization") ||
		strings.Contains(errMsg, "lock timeout"):
		return errs.ErrLedgerLocked

	// The unique index on the idempotency key catches racing retries
	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint"):
		return errs.ErrDuplicatePayment

	// Connection issues
	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset"):
		return fmt.Errorf("%w: database unreachable during %s", errs.ErrStorageFailure, operation)

	// Timeout errors
	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", errs.ErrStorageFailure, operation)

	default:
		return errs.ErrInternalServer
	}
}

// MapNotFoundError maps record-not-found to the ledger not found error and
// delegates everything else to MapError
func (m *ErrorMapper) MapNotFoundError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrLedgerNotFound
	}
	return m.MapError(err, operation)
}
