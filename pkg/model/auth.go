package model

import "time"

// VerificationCode is a single-use, time-boxed secret tied to an email.
// At most one live code exists per email; issuing a new one removes the rest.
type VerificationCode struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	Code      string    `json:"code" bson:"code" validate:"required,len=6,numeric"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Session is a bearer token representing an authenticated email for a bounded
// window. The token itself is the document key.
type Session struct {
	SessionID string    `json:"session_id" bson:"_id" validate:"required,uuid4"`
	Email     string    `json:"email" bson:"email" validate:"required,email"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
