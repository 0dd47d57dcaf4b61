package notifier

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickerSentinel/internal/model"
)

type staticRecipients struct {
	emails []string
	err    error
}

func (s *staticRecipients) Recipients() ([]string, error) { return s.emails, s.err }

func newTestNotifier(source RecipientSource, fallback []string) *EmailNotifier {
	return NewEmailNotifier("smtp.example.com", 587, "user", "pass", "bot@example.com", "Favorable stocks to invest on ", source, fallback, time.UTC)
}

func TestSendDaily_DeliversAndReportsRecipients(t *testing.T) {
	n := newTestNotifier(&staticRecipients{emails: []string{"a@example.com"}}, nil)
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:587", addr)
		assert.Equal(t, "bot@example.com", from)
		gotTo = to
		gotMsg = msg
		return nil
	}

	rows := []model.BucketRow{{Ticker: "BCE.TO", Latest: 44, Label: "Below 30d avg", Amount: 100}}
	fresh := []model.TickerSignal{{Ticker: "BCE.TO", WindowLabel: "Below 30d avg"}}
	d, err := n.SendDaily(context.Background(), rows, fresh)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, []string{"a@example.com"}, d.Recipients)
	assert.Contains(t, d.Subject, "(1 new)")
	assert.Equal(t, []string{"a@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: "+d.Subject)
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "BCE.TO")
}

func TestRecipients_FallbackWhenSourceEmpty(t *testing.T) {
	n := newTestNotifier(&staticRecipients{}, []string{"fallback@example.com"})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return nil }

	d, err := n.SendWeekly(context.Background(), []model.TickerSignal{{Ticker: "T.TO"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback@example.com"}, d.Recipients)
}

func TestRecipients_FallbackWhenSourceFails(t *testing.T) {
	n := newTestNotifier(&staticRecipients{err: errors.New("db closed")}, []string{"fallback@example.com"})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return nil }

	d, err := n.SendWeekly(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback@example.com"}, d.Recipients)
}

func TestDeliver_NoRecipients(t *testing.T) {
	n := newTestNotifier(&staticRecipients{}, nil)
	_, err := n.SendWeekly(context.Background(), nil)
	assert.Error(t, err)
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	n := newTestNotifier(&staticRecipients{emails: []string{"a@example.com"}}, nil)
	attempts := 0
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}

	d, err := n.SendWeekly(context.Background(), []model.TickerSignal{{Ticker: "T.TO"}})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 3, attempts)
}

func TestSendWithRetry_ExhaustsAttempts(t *testing.T) {
	n := newTestNotifier(&staticRecipients{emails: []string{"a@example.com"}}, nil)
	n.MaxRetries = 1
	attempts := 0
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		attempts++
		return errors.New("permanent")
	}

	_, err := n.SendWeekly(context.Background(), []model.TickerSignal{{Ticker: "T.TO"}})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "permanent")
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	n := newTestNotifier(&staticRecipients{emails: []string{"a@example.com"}}, nil)
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("down")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.SendWeekly(ctx, []model.TickerSignal{{Ticker: "T.TO"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMessage_MultipartStructure(t *testing.T) {
	msg := string(buildMessage("from@x", []string{"a@x", "b@x"}, "Hello", "text body", "<b>html body</b>"))
	assert.True(t, strings.HasPrefix(msg, "From: from@x\r\n"))
	assert.Contains(t, msg, "To: a@x, b@x\r\n")
	assert.Contains(t, msg, "text/plain; charset=utf-8")
	assert.Contains(t, msg, "text/html; charset=utf-8")
	assert.Contains(t, msg, "text body")
	assert.Contains(t, msg, "<b>html body</b>")
}
