package notifier

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// DisabledNotifier is used when mail is not configured. Settlements proceed
// normally; every notice is reported as unsent.
type DisabledNotifier struct{}

// NewDisabledNotifier creates a notifier that never sends
func NewDisabledNotifier() *DisabledNotifier {
	return &DisabledNotifier{}
}

// Notify implements core.Notifier
func (n *DisabledNotifier) Notify(ctx context.Context, ledgerID uint64, name string, amountCents int64) core.NotificationResult {
	return core.NotificationResult{Sent: false, Detail: "notifications disabled"}
}

// FromConfig returns the SMTP notifier when mail is enabled, otherwise the
// disabled one
func FromConfig(enabled bool, smtpNotifier *SMTPNotifier) core.Notifier {
	if enabled {
		return smtpNotifier
	}
	return NewDisabledNotifier()
}
