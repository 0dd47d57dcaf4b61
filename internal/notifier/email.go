package notifier

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"TickerSentinel/internal/model"
	"TickerSentinel/internal/strategy"
)

// RecipientSource lists the addresses to notify.
type RecipientSource interface {
	Recipients() ([]string, error)
}

// EmailNotifier delivers signal reports over SMTP (STARTTLS submission).
type EmailNotifier struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	SubjectPrefix string
	MaxRetries    int

	source   RecipientSource
	fallback []string
	loc      *time.Location

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a notifier. Recipients come from source, with
// the fallback list used when the source is empty or unavailable.
func NewEmailNotifier(host string, port int, username, password, from, subjectPrefix string, source RecipientSource, fallback []string, loc *time.Location) *EmailNotifier {
	return &EmailNotifier{
		Host:          host,
		Port:          port,
		Username:      username,
		Password:      password,
		From:          from,
		SubjectPrefix: subjectPrefix,
		MaxRetries:    3,
		source:        source,
		fallback:      fallback,
		loc:           loc,
		send:          smtp.SendMail,
	}
}

// SendDaily emails the full daily threshold table. The fresh rows drive
// the subject line; the table shows every ticker for context.
func (n *EmailNotifier) SendDaily(ctx context.Context, rows []model.BucketRow, fresh []model.TickerSignal) (*strategy.Delivery, error) {
	subject := fmt.Sprintf("%s%s (%d new)", n.SubjectPrefix, n.today(), len(fresh))
	return n.deliver(ctx, subject, FormatDailyText(rows), FormatDailyHTML(rows))
}

// SendWeekly emails the weekly window-breach table.
func (n *EmailNotifier) SendWeekly(ctx context.Context, rows []model.TickerSignal) (*strategy.Delivery, error) {
	subject := n.SubjectPrefix + n.today()
	return n.deliver(ctx, subject, FormatWeeklyText(rows), FormatWeeklyHTML(rows))
}

func (n *EmailNotifier) today() string {
	return time.Now().In(n.loc).Format("2006-01-02")
}

func (n *EmailNotifier) recipients() ([]string, error) {
	emails, err := n.source.Recipients()
	if err != nil {
		log.Warn().Err(err).Msg("recipient lookup failed, using configured fallback")
	}
	if len(emails) == 0 {
		emails = n.fallback
	}
	if len(emails) == 0 {
		return nil, fmt.Errorf("no recipients configured")
	}
	return emails, nil
}

func (n *EmailNotifier) deliver(ctx context.Context, subject, bodyText, bodyHTML string) (*strategy.Delivery, error) {
	if n.Host == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}
	recipients, err := n.recipients()
	if err != nil {
		return nil, err
	}

	msg := buildMessage(n.From, recipients, subject, bodyText, bodyHTML)
	if err := n.sendWithRetry(ctx, recipients, msg); err != nil {
		return nil, err
	}
	log.Info().Str("subject", subject).Strs("to", recipients).Msg("email sent")
	return &strategy.Delivery{Subject: subject, Recipients: recipients}, nil
}

// sendWithRetry sends with exponential backoff, honoring ctx between
// attempts.
func (n *EmailNotifier) sendWithRetry(ctx context.Context, recipients []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	var auth smtp.Auth
	if n.Username != "" && n.Password != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}

	var lastErr error
	for i := 0; i <= n.MaxRetries; i++ {
		if err := n.send(addr, auth, n.From, recipients, msg); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("email send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d attempts exhausted: %w", n.MaxRetries+1, lastErr)
}

// buildMessage assembles a multipart/alternative message with text and
// HTML parts.
func buildMessage(from string, to []string, subject, bodyText, bodyHTML string) []byte {
	var buf bytes.Buffer
	alt := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", alt.Boundary())

	textPart, _ := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	textPart.Write([]byte(bodyText))

	htmlPart, _ := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	htmlPart.Write([]byte(bodyHTML))

	alt.Close()
	return buf.Bytes()
}
