package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"time"

	"atelier/pkg/config"
)

type SMTPMailer struct {
	host     string
	port     int
	user     string
	pass     string
	fromName string
	from     string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		pass:     cfg.SMTPPass,
		fromName: cfg.MailFromName,
		from:     cfg.MailFromEmail,
	}
}

func (m *SMTPMailer) SendVerificationCode(toEmail, code string, ttl time.Duration) error {
	subject, text, html := verificationMessage(code, ttl)

	var buf bytes.Buffer
	boundary := "alt-boundary"
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	// Local relays (Mailpit on 1025) run without auth; SendMail upgrades
	// to STARTTLS when the server advertises it.
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{toEmail}, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func verificationMessage(code string, ttl time.Duration) (subject, text, html string) {
	minutes := int(ttl.Minutes())
	subject = "Your sign-in code"
	text = fmt.Sprintf("Your sign-in code is %s. It expires in %d minutes.", code, minutes)
	html = fmt.Sprintf("<p>Your sign-in code is <b>%s</b>.</p><p>It expires in %d minutes.</p>", code, minutes)
	return subject, text, html
}
