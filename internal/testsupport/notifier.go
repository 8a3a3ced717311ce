package testsupport

import (
	"context"

	"github.com/coffeetab/coffeetab/internal/domain/port/core"
)

// NotifyCall records one invocation of the scripted notifier
type NotifyCall struct {
	LedgerID uint64
	Name     string
	Amount   int64
}

// ScriptedNotifier is a Notifier test double that records calls and can be
// told to fail
type ScriptedNotifier struct {
	Fail   bool
	Detail string
	Calls  []NotifyCall
}

// Notify implements core.Notifier
func (n *ScriptedNotifier) Notify(ctx context.Context, ledgerID uint64, name string, amountCents int64) core.NotificationResult {
	n.Calls = append(n.Calls, NotifyCall{LedgerID: ledgerID, Name: name, Amount: amountCents})
	if n.Fail {
		detail := n.Detail
		if detail == "" {
			detail = "smtp unavailable"
		}
		return core.NotificationResult{Sent: false, Detail: detail}
	}
	return core.NotificationResult{Sent: true}
}
