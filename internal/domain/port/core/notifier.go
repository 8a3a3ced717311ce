package core

import "context"

// NotificationResult reports the outcome of a notification attempt.
// Expected failure modes (network, auth, timeout) are reported here rather
// than as Go errors so a caller can never mistake them for settlement errors.
type NotificationResult struct {
	Sent   bool
	Detail string // Human-readable failure detail, empty on success
}

// Notifier delivers a best-effort payment notice to a user. Implementations
// must honor ctx cancellation and must never block indefinitely; settlement
// durability never depends on the outcome.
type Notifier interface {
	Notify(ctx context.Context, ledgerID uint64, name string, amountCents int64) NotificationResult
}
