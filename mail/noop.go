package mail

import (
	"context"

	"github.com/andresvm/email-autosend/log"
)

type noopMailer struct{}

// NewNoopMailer returns a Mailer that only logs. Used in development when no
// provider is configured.
func NewNoopMailer() Mailer {
	return &noopMailer{}
}

func (m *noopMailer) Send(_ context.Context, to, subject, _ string) error {
	log.Info.Println("noop mail send", to, subject)
	return nil
}
