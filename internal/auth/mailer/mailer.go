// Package mailer delivers verification codes to visitors. The driver is
// selected by MAILER_DRIVER: dev logs the code, smtp relays through a
// configured SMTP host, mailersend uses the MailerSend API.
package mailer

import (
	"time"

	"atelier/pkg/config"
)

type Service interface {
	SendVerificationCode(toEmail, code string, ttl time.Duration) error
}

func New(cfg *config.Config) Service {
	switch cfg.MailerDriver {
	case config.MailerSMTP:
		return NewSMTPMailer(cfg)
	case config.MailerMailerSend:
		return NewMailerSendMailer(cfg)
	default:
		return NewDevMailer(cfg)
	}
}
