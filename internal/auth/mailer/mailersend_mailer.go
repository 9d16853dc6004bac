package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"atelier/pkg/config"

	"github.com/mailersend/mailersend-go"
)

const sendTimeout = 10 * time.Second

type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendMailer(cfg *config.Config) *MailerSendMailer {
	return &MailerSendMailer{
		client: mailersend.NewMailersend(cfg.MailerSendAPIKey),
		from: mailersend.From{
			Name:  cfg.MailFromName,
			Email: cfg.MailFromEmail,
		},
	}
}

func (m *MailerSendMailer) SendVerificationCode(toEmail, code string, ttl time.Duration) error {
	subject, text, html := verificationMessage(code, ttl)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
