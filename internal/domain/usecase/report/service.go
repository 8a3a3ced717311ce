package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

// Summary aggregates the ledger store and payment trail for the admin panel
type Summary struct {
	ActiveLedgers      int64
	OutstandingTab     int64 // Cents
	OutstandingPending int64 // Cents
	TotalCredit        int64 // Cents
	TotalRequested     int64 // Cents
	TotalReceived      int64 // Cents
}

// Service provides read-only aggregation over the ledger and payment trail.
// It never mutates state and runs outside any unit of work.
type Service struct {
	ledgers  persistence.LedgerRepository
	payments persistence.PaymentRepository
	logger   coreport.Logger
}

// NewService creates a report service
func NewService(
	ledgers persistence.LedgerRepository,
	payments persistence.PaymentRepository,
	logger coreport.Logger,
) *Service {
	return &Service{
		ledgers:  ledgers,
		payments: payments,
		logger:   logger,
	}
}

// PaymentHistory returns payments matching the filter, newest first
func (s *Service) PaymentHistory(ctx context.Context, filter persistence.PaymentFilter) ([]*entity.Payment, error) {
	return s.payments.List(ctx, filter)
}

// GetSummary returns aggregate totals across all active ledgers
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	ledgerTotals, err := s.ledgers.Totals(ctx)
	if err != nil {
		return nil, err
	}

	paymentTotals, err := s.payments.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{
		ActiveLedgers:      ledgerTotals.ActiveCount,
		OutstandingTab:     ledgerTotals.OutstandingTab,
		OutstandingPending: ledgerTotals.OutstandingPending,
		TotalCredit:        ledgerTotals.TotalCredit,
		TotalRequested:     paymentTotals.Requested,
		TotalReceived:      paymentTotals.Received,
	}, nil
}

// WriteHistoryCSV streams the filtered payment history as CSV
func (s *Service) WriteHistoryCSV(ctx context.Context, w io.Writer, filter persistence.PaymentFilter) error {
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"reference", "ledger_id", "kind", "amount", "confirmed", "notes", "created_at"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range payments {
		record := []string{
			p.Reference,
			strconv.FormatUint(p.LedgerID, 10),
			string(p.Kind),
			p.AmountString(),
			strconv.FormatBool(p.ConfirmedByAdmin),
			p.Notes,
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
