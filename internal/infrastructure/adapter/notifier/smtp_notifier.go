package notifier

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/coffeetab/coffeetab/internal/domain/entity"
	"github.com/coffeetab/coffeetab/internal/domain/port/core"
	"github.com/coffeetab/coffeetab/internal/infrastructure/config"
)

// SMTPNotifier delivers payment requests to the office admin mailbox. Every
// failure mode is reported through NotificationResult; the settlement that
// triggered the notice is already committed by the time Notify runs.
type SMTPNotifier struct {
	cfg    config.MailConfig
	logger core.Logger

	// send is swappable for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPNotifier creates a notifier backed by a plain SMTP relay
func NewSMTPNotifier(cfg config.MailConfig, logger core.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// Notify implements core.Notifier. The blocking SMTP exchange runs in its own
// goroutine so ctx cancellation always returns promptly.
func (n *SMTPNotifier) Notify(ctx context.Context, ledgerID uint64, name string, amountCents int64) core.NotificationResult {
	msg := n.buildMessage(ledgerID, name, amountCents)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- n.send(addr, auth, n.cfg.From, []string{n.cfg.AdminTo}, msg)
	}()

	select {
	case <-ctx.Done():
		return core.NotificationResult{Sent: false, Detail: "notification timed out: " + ctx.Err().Error()}
	case err := <-done:
		if err != nil {
			return core.NotificationResult{Sent: false, Detail: err.Error()}
		}
		return core.NotificationResult{Sent: true}
	}
}

func (n *SMTPNotifier) buildMessage(ledgerID uint64, name string, amountCents int64) []byte {
	subject := fmt.Sprintf("Coffee tab: %s owes %s", name, entity.CentsToString(amountCents))
	body := fmt.Sprintf(
		"%s (ledger %d) settled their coffee tab and owes %s.\r\n\r\n"+
			"Please collect the amount and confirm it in the admin panel.\r\n",
		name, ledgerID, entity.CentsToString(amountCents),
	)
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		n.cfg.From, n.cfg.AdminTo, subject, body,
	))
}
