package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type resendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a Mailer that delivers through the Resend API.
func NewResendMailer(apiKey, from string) Mailer {
	return &resendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *resendMailer) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	return nil
}
