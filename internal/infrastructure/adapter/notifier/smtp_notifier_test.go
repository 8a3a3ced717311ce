package notifier

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeetab/coffeetab/internal/infrastructure/config"
	"github.com/coffeetab/coffeetab/internal/testsupport"
)

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "coffeetab",
		Password: "secret",
		From:     "coffeetab@example.com",
		AdminTo:  "admin@example.com",
	}
}

func TestSMTPNotifier_Notify(t *testing.T) {
	t.Run("successful delivery", func(t *testing.T) {
		n := NewSMTPNotifier(testMailConfig(), &testsupport.NopLogger{})

		var gotAddr, gotFrom string
		var gotTo []string
		var gotMsg []byte
		n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr = addr
			gotFrom = from
			gotTo = to
			gotMsg = msg
			return nil
		}

		result := n.Notify(context.Background(), 7, "Alice", 450)

		assert.True(t, result.Sent)
		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.Equal(t, "coffeetab@example.com", gotFrom)
		require.Equal(t, []string{"admin@example.com"}, gotTo)
		assert.Contains(t, string(gotMsg), "Subject: Coffee tab: Alice owes 4.50")
		assert.Contains(t, string(gotMsg), "ledger 7")
	})

	t.Run("relay error reported as unsent", func(t *testing.T) {
		n := NewSMTPNotifier(testMailConfig(), &testsupport.NopLogger{})
		n.send = func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		}

		result := n.Notify(context.Background(), 7, "Alice", 450)

		assert.False(t, result.Sent)
		assert.Contains(t, result.Detail, "connection refused")
	})

	t.Run("context cancellation wins over a hung relay", func(t *testing.T) {
		n := NewSMTPNotifier(testMailConfig(), &testsupport.NopLogger{})
		release := make(chan struct{})
		n.send = func(string, smtp.Auth, string, []string, []byte) error {
			<-release
			return nil
		}
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		result := n.Notify(ctx, 7, "Alice", 450)

		assert.False(t, result.Sent)
		assert.Contains(t, result.Detail, "timed out")
	})
}

func TestDisabledNotifier(t *testing.T) {
	n := FromConfig(false, NewSMTPNotifier(testMailConfig(), &testsupport.NopLogger{}))

	result := n.Notify(context.Background(), 1, "Bob", 100)

	assert.False(t, result.Sent)
	assert.Equal(t, "notifications disabled", result.Detail)
}
