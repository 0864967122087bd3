// Package mail provides the outbound mailer used for password-reset links.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"

	"blog_backend/internal/shared/ratelimiter"
)

// ResendMailer delivers mail through the Resend API. Delivery counts as
// accepted only when the API returns a message ID.
type ResendMailer struct {
	client  *resend.Client
	sender  string
	timeout time.Duration
	limiter ratelimiter.RateLimiterInterface
}

// NewResendMailer creates a mailer for the given API key and sender address.
// timeout bounds every delivery call; the mailer is the slowest external
// dependency, so a hung call must not hold a request open indefinitely.
// limiter may be nil to disable outbound throttling.
func NewResendMailer(apiKey, sender string, timeout time.Duration, limiter ratelimiter.RateLimiterInterface) *ResendMailer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendMailer{
		client:  resend.NewClient(apiKey),
		sender:  sender,
		timeout: timeout,
		limiter: limiter,
	}
}

// Send delivers a plain-text mail and returns the provider's message ID.
// A timeout surfaces as an error just like an explicit rejection.
func (m *ResendMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	if m.limiter != nil {
		m.limiter.WaitIfNeeded()
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    m.sender,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Warn("mail delivery failed", "to", to, "error", err)
		return "", fmt.Errorf("send mail: %w", err)
	}

	slog.Info("mail accepted", "to", to, "message_id", sent.Id)
	return sent.Id, nil
}
