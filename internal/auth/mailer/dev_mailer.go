package mailer

import (
	"time"

	"atelier/pkg/config"
	"atelier/pkg/logger"
)

// DevMailer writes the code to the log instead of sending mail. Local
// development only; config validation rejects it in production.
type DevMailer struct {
	log *logger.Logger
}

func NewDevMailer(cfg *config.Config) *DevMailer {
	return &DevMailer{log: cfg.Log}
}

func (m *DevMailer) SendVerificationCode(toEmail, code string, ttl time.Duration) error {
	m.log.Info("dev mail: verification code",
		"to", toEmail,
		"code", code,
		"expires_in", ttl.String(),
	)
	return nil
}
