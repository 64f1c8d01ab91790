package mail

import (
	"context"
	"fmt"
)

// Mailer is the outbound transport capability. Implementations wrap a single
// provider; the caller owns retries, throttling and batching.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

const greetingBody = `
        <div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto;">
          <h2 style="color: #4CAF50;">Hi %s! 👋</h2>
          <p style="font-size: 16px; line-height: 1.6; color: #333;">
            This is an automated message sent from our mobile application.
          </p>
          <p style="font-size: 16px; line-height: 1.6; color: #333;">
            We hope you have a great day!
          </p>
          <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
          <p style="font-size: 12px; color: #999;">
            This message was sent automatically. Please do not reply.
          </p>
        </div>
      `

// GreetingSubject returns the subject line of the fixed greeting template.
func GreetingSubject(name string) string {
	return fmt.Sprintf("Hello %s!", name)
}

// GreetingBody returns the HTML body of the fixed greeting template.
func GreetingBody(name string) string {
	return fmt.Sprintf(greetingBody, name)
}
