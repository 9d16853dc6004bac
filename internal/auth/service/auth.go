package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	autherrors "atelier/internal/auth/errors"
	"atelier/internal/auth/mailer"
	"atelier/internal/auth/repository"
	"atelier/internal/auth/validator"
	"atelier/pkg/config"
	apperrors "atelier/pkg/errors"
	"atelier/pkg/events"
	"atelier/pkg/model"
	"atelier/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthService interface {
	SendCode(ctx context.Context, email string) (*model.VerificationCode, error)
	GetCode(ctx context.Context, email string) (*model.VerificationCode, error)
	VerifyCode(ctx context.Context, email, code string) (*model.Session, error)
	ValidateSession(ctx context.Context, sessionID string) (*model.Session, error)
}

type authService struct {
	codeRepo    repository.VerificationCodeRepository
	sessionRepo repository.SessionRepository
	validator   *validator.AuthValidator
	mailer      mailer.Service
	publisher   events.Publisher
	cfg         *config.Config
}

func NewAuthService(
	codeRepo repository.VerificationCodeRepository,
	sessionRepo repository.SessionRepository,
	validator *validator.AuthValidator,
	mail mailer.Service,
	publisher events.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		codeRepo:    codeRepo,
		sessionRepo: sessionRepo,
		validator:   validator,
		mailer:      mail,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// SendCode issues a fresh verification code for the email and retires any
// earlier ones. The delete and insert run in one transaction so at most one
// live code exists per email at any point.
func (s *authService) SendCode(ctx context.Context, email string) (*model.VerificationCode, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, apperrors.Validation("Invalid email", map[string]any{"error": err.Error()})
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}

	record := &model.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().UTC().Add(s.cfg.CodeTTL),
	}

	err = s.codeRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.codeRepo.DeleteByEmail(sessCtx, email); err != nil {
			return apperrors.Internal("Failed to retire previous codes", err)
		}
		if err := s.codeRepo.Create(sessCtx, record); err != nil {
			return apperrors.Internal("Failed to store verification code", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to issue verification code", "error", err)
		return nil, err
	}

	// Delivery failures don't fail the request; the caller can re-request.
	if err := s.mailer.SendVerificationCode(email, code, s.cfg.CodeTTL); err != nil {
		s.cfg.Log.Warn("Failed to deliver verification code", "email", email, "error", err)
	}

	s.cfg.Log.Info("Verification code issued", "email", email)
	s.publishCodeIssued(ctx, email)

	return record, nil
}

// GetCode returns the live code for an email, or nil when none exists. Expired
// codes are treated as absent and removed on sight.
func (s *authService) GetCode(ctx context.Context, email string) (*model.VerificationCode, error) {
	email = sanitizer.NormalizeEmail(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, apperrors.Validation("Invalid email", map[string]any{"error": err.Error()})
	}

	record, err := s.codeRepo.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrCodeNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to look up verification code", "error", err)
		return nil, apperrors.Internal("Failed to look up verification code", err)
	}

	if record.Expired(time.Now().UTC()) {
		s.expireCode(ctx, record)
		return nil, nil
	}

	return record, nil
}

// VerifyCode exchanges a live code for a session. A wrong code and an expired
// code fail differently so the caller can prompt accordingly; either way the
// code stays single-use. On success any earlier sessions for the email are
// replaced, so one email holds one session.
func (s *authService) VerifyCode(ctx context.Context, email, code string) (*model.Session, error) {
	email = sanitizer.NormalizeEmail(email)
	code = sanitizer.TrimAndNormalize(code)
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, apperrors.Validation("Invalid email", map[string]any{"error": err.Error()})
	}
	if err := s.validator.ValidateCode(code); err != nil {
		return nil, apperrors.InvalidCredential("Invalid verification code")
	}

	record, err := s.codeRepo.FindByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, autherrors.ErrCodeNotFound) {
			return nil, apperrors.InvalidCredential("Invalid verification code")
		}
		s.cfg.Log.Error("Failed to look up verification code", "error", err)
		return nil, apperrors.Internal("Failed to verify code", err)
	}

	if record.Expired(time.Now().UTC()) {
		s.expireCode(ctx, record)
		return nil, apperrors.Expired("Verification code has expired")
	}

	session := &model.Session{
		SessionID: uuid.NewString(),
		Email:     email,
		ExpiresAt: time.Now().UTC().Add(s.cfg.SessionTTL),
	}

	err = s.codeRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.codeRepo.Delete(sessCtx, record.ID); err != nil {
			return apperrors.Internal("Failed to consume verification code", err)
		}
		if err := s.sessionRepo.DeleteByEmail(sessCtx, email); err != nil {
			return apperrors.Internal("Failed to retire previous sessions", err)
		}
		if err := s.sessionRepo.Create(sessCtx, session); err != nil {
			return apperrors.Internal("Failed to create session", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to establish session", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Session established", "email", email, "session_id", session.SessionID)

	return session, nil
}

// ValidateSession resolves a session token, returning nil when the token is
// unknown or stale. Stale sessions are deleted on sight rather than swept.
func (s *authService) ValidateSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, autherrors.ErrSessionNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to look up session", "error", err)
		return nil, apperrors.Internal("Failed to validate session", err)
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
			s.cfg.Log.Warn("Failed to delete stale session", "session_id", sessionID, "error", err)
		}
		return nil, nil
	}

	return session, nil
}

// --- Helpers ---

// generateCode draws a 6-digit code from crypto/rand, uniform over
// [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (s *authService) expireCode(ctx context.Context, record *model.VerificationCode) {
	if err := s.codeRepo.Delete(ctx, record.ID); err != nil {
		s.cfg.Log.Warn("Failed to delete expired code", "email", record.Email, "error", err)
	}
}

// publishCodeIssued announces that a code went out. The code itself never
// rides on the event bus.
func (s *authService) publishCodeIssued(ctx context.Context, email string) {
	payload := map[string]any{
		"email": email,
	}
	if err := s.publisher.Publish(ctx, email, events.TypeCodeIssued, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish code issued event", "error", err)
	}
}
