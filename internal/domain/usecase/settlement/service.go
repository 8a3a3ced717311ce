package settlement

import (
	"context"
	"fmt"

	errs "github.com/coffeetab/coffeetab/internal/domain/error"
	coreport "github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/domain/port/persistence"
)

// Default guards when the configuration leaves them unset
const (
	// DefaultReceiveCeiling caps a single confirmed payment at 1000.00
	// to guard against fat-finger input
	DefaultReceiveCeiling int64 = 100000

	// DefaultNotifyTimeout bounds a notification attempt
	DefaultNotifyTimeout = 5 * coreport.Second
)

// Config tunes the settlement engine
type Config struct {
	ReceiveCeiling int64            // Maximum single confirmed payment, cents
	NotifyTimeout  coreport.Duration // Upper bound for one notification attempt
}

// Service implements the settlement engine: it converts accrued tabs into
// pending payment obligations and applies confirmed payments back, crediting
// any excess. All ledger mutations run inside a unit of work; the notification
// gateway is invoked strictly outside it.
type Service struct {
	uow          persistence.UnitOfWork
	notifier     coreport.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config
}

// NewService creates a settlement service
func NewService(
	uow persistence.UnitOfWork,
	notifier coreport.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	if cfg.ReceiveCeiling <= 0 {
		cfg.ReceiveCeiling = DefaultReceiveCeiling
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	return &Service{
		uow:          uow,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

// inTx runs fn inside a unit of work. On any error the transaction is rolled
// back, so a failed operation leaves the ledger completely unchanged.
func (s *Service) inTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}

	if err := fn(txCtx); err != nil {
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			s.logger.Error("Rollback failed after settlement error", map[string]any{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		_ = s.uow.Rollback(txCtx)
		return fmt.Errorf("%w: %s", errs.ErrStorageFailure, err.Error())
	}
	return nil
}
