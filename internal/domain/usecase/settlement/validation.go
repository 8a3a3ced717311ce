package settlement

import (
	"fmt"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	errs "github.com/coffeetab/coffeetab/internal/domain/error"
)

// validateReceivedAmount parses a confirmed payment amount and applies the
// configured ceiling. The ceiling guards against fat-finger input; anything
// above it is rejected as an invalid amount, not silently capped.
func (s *Service) validateReceivedAmount(amount string) (int64, error) {
	cents, err := entity.ParseAmount(amount)
	if err != nil {
		return 0, err
	}
	if cents == 0 {
		return 0, fmt.Errorf("%w: amount must be positive", errs.ErrInvalidAmount)
	}
	if cents > s.cfg.ReceiveCeiling {
		return 0, fmt.Errorf("%w: exceeds ceiling of %s", errs.ErrInvalidAmount, entity.CentsToString(s.cfg.ReceiveCeiling))
	}
	return cents, nil
}
