package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	autherrors "atelier/internal/auth/errors"
	"atelier/internal/auth/validator"
	"atelier/pkg/config"
	mongotx "atelier/pkg/db/mongo"
	apperrors "atelier/pkg/errors"
	"atelier/pkg/events"
	"atelier/pkg/logger"
	"atelier/pkg/model"
)

// ────────────────────────────────────────────────
// In-memory mocks
// ────────────────────────────────────────────────

type mockCodeRepository struct {
	byID   map[string]*model.VerificationCode
	nextID int
}

func newMockCodeRepository() *mockCodeRepository {
	return &mockCodeRepository{byID: map[string]*model.VerificationCode{}}
}

func (m *mockCodeRepository) Create(ctx context.Context, code *model.VerificationCode) error {
	m.nextID++
	c := *code
	c.ID = fmt.Sprintf("code-%d", m.nextID)
	c.CreatedAt = time.Now()
	m.byID[c.ID] = &c
	code.ID = c.ID
	return nil
}

func (m *mockCodeRepository) FindLatestByEmail(ctx context.Context, email string) (*model.VerificationCode, error) {
	var latest *model.VerificationCode
	for _, c := range m.byID {
		if c.Email != email {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, autherrors.ErrCodeNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *mockCodeRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*model.VerificationCode, error) {
	for _, c := range m.byID {
		if c.Email == email && c.Code == code {
			copy := *c
			return &copy, nil
		}
	}
	return nil, autherrors.ErrCodeNotFound
}

func (m *mockCodeRepository) DeleteByEmail(ctx context.Context, email string) error {
	for id, c := range m.byID {
		if c.Email == email {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *mockCodeRepository) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *mockCodeRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func (m *mockCodeRepository) liveFor(email string) []*model.VerificationCode {
	var out []*model.VerificationCode
	for _, c := range m.byID {
		if c.Email == email {
			out = append(out, c)
		}
	}
	return out
}

type mockSessionRepository struct {
	byID map[string]*model.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{byID: map[string]*model.Session{}}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	s := *session
	s.CreatedAt = time.Now()
	m.byID[s.SessionID] = &s
	return nil
}

func (m *mockSessionRepository) FindByID(ctx context.Context, sessionID string) (*model.Session, error) {
	if s, ok := m.byID[sessionID]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, autherrors.ErrSessionNotFound
}

func (m *mockSessionRepository) DeleteByEmail(ctx context.Context, email string) error {
	for id, s := range m.byID {
		if s.Email == email {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *mockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	delete(m.byID, sessionID)
	return nil
}

func (m *mockSessionRepository) liveFor(email string) []*model.Session {
	var out []*model.Session
	for _, s := range m.byID {
		if s.Email == email {
			out = append(out, s)
		}
	}
	return out
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendVerificationCode(toEmail, code string, ttl time.Duration) error {
	m.sent = append(m.sent, code)
	return m.err
}

func newTestService(t *testing.T, codes *mockCodeRepository, sessions *mockSessionRepository, mail *recordingMailer) AuthService {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	cfg := &config.Config{
		Log:        log,
		CodeTTL:    10 * time.Minute,
		SessionTTL: 2 * time.Hour,
	}
	v := validator.NewAuthValidator(log)
	publisher := events.NewPublisher(nil, "", "test", log)
	return NewAuthService(codes, sessions, v, mail, publisher, cfg)
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestSendCode_SingleLiveCodePerEmail(t *testing.T) {
	codes := newMockCodeRepository()
	mail := &recordingMailer{}
	svc := newTestService(t, codes, newMockSessionRepository(), mail)
	ctx := context.Background()

	first, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("first send should succeed: %v", err)
	}
	second, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("second send should succeed: %v", err)
	}

	live := codes.liveFor("a@x.com")
	if len(live) != 1 {
		t.Fatalf("expected exactly one live code, got %d", len(live))
	}
	if live[0].Code != second.Code {
		t.Errorf("surviving code should be the latest one")
	}
	if first.Code == second.Code && first.ID == second.ID {
		t.Errorf("second send should issue a fresh record")
	}
	if len(mail.sent) != 2 {
		t.Errorf("expected 2 deliveries, got %d", len(mail.sent))
	}
}

func TestSendCode_CodeShape(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})

	record, err := svc.SendCode(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Code) != 6 {
		t.Fatalf("expected a 6-digit code, got %q", record.Code)
	}
	for _, r := range record.Code {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", record.Code)
		}
	}
	if record.Code[0] == '0' {
		t.Errorf("codes start at 100000, got %q", record.Code)
	}
}

func TestSendCode_MailFailureDoesNotFailRequest(t *testing.T) {
	codes := newMockCodeRepository()
	mail := &recordingMailer{err: fmt.Errorf("smtp down")}
	svc := newTestService(t, codes, newMockSessionRepository(), mail)

	if _, err := svc.SendCode(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("send should succeed despite delivery failure: %v", err)
	}
	if len(codes.liveFor("a@x.com")) != 1 {
		t.Errorf("code should still be stored")
	}
}

func TestSendCode_NormalizesEmail(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})

	if _, err := svc.SendCode(context.Background(), "  A@X.Com "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(codes.liveFor("a@x.com")) != 1 {
		t.Errorf("expected code stored under normalized email")
	}
}

func TestSendCode_InvalidEmail(t *testing.T) {
	svc := newTestService(t, newMockCodeRepository(), newMockSessionRepository(), &recordingMailer{})

	_, err := svc.SendCode(context.Background(), "not-an-email")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetCode_AbsentAndExpired(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})
	ctx := context.Background()

	got, err := svc.GetCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for an email with no code")
	}

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err = svc.GetCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Code != record.Code {
		t.Fatalf("expected the live code back")
	}

	// Age the stored record past its TTL.
	codes.byID[record.ID].ExpiresAt = time.Now().Add(-time.Minute)

	got, err = svc.GetCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expired code should read as absent")
	}
	if len(codes.liveFor("a@x.com")) != 0 {
		t.Errorf("expired code should be deleted on sight")
	}
}

func TestVerifyCode_WrongCode(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})
	ctx := context.Background()

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrong := "000000"
	if wrong == record.Code {
		wrong = "000001"
	}
	_, err = svc.VerifyCode(ctx, "a@x.com", wrong)
	if err == nil {
		t.Fatal("expected error for wrong code")
	}
	if !apperrors.HasCode(err, apperrors.CodeInvalidCredential) {
		t.Errorf("expected INVALID_CREDENTIAL, got %v", err)
	}

	if len(codes.liveFor("a@x.com")) != 1 {
		t.Errorf("wrong guess should not consume the code")
	}
}

func TestVerifyCode_ExpiredCode(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})
	ctx := context.Background()

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codes.byID[record.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.VerifyCode(ctx, "a@x.com", record.Code)
	if err == nil {
		t.Fatal("expected error for expired code")
	}
	if !apperrors.HasCode(err, apperrors.CodeExpired) {
		t.Errorf("expected EXPIRED, got %v", err)
	}
	if len(codes.liveFor("a@x.com")) != 0 {
		t.Errorf("expired code should be deleted on sight")
	}
}

func TestVerifyCode_ConsumesCodeAndReplacesSessions(t *testing.T) {
	codes := newMockCodeRepository()
	sessions := newMockSessionRepository()
	svc := newTestService(t, codes, sessions, &recordingMailer{})
	ctx := context.Background()

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := svc.VerifyCode(ctx, "a@x.com", record.Code)
	if err != nil {
		t.Fatalf("verify should succeed: %v", err)
	}
	if first.SessionID == "" || first.Email != "a@x.com" {
		t.Fatalf("unexpected session: %+v", first)
	}
	if len(codes.liveFor("a@x.com")) != 0 {
		t.Errorf("code should be single-use")
	}

	// A second round replaces the first session.
	record, err = svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.VerifyCode(ctx, "a@x.com", record.Code)
	if err != nil {
		t.Fatalf("verify should succeed: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Errorf("expected a fresh session token")
	}

	live := sessions.liveFor("a@x.com")
	if len(live) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(live))
	}
	if live[0].SessionID != second.SessionID {
		t.Errorf("surviving session should be the latest one")
	}
}

func TestVerifyCode_ReusedCodeRejected(t *testing.T) {
	codes := newMockCodeRepository()
	svc := newTestService(t, codes, newMockSessionRepository(), &recordingMailer{})
	ctx := context.Background()

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyCode(ctx, "a@x.com", record.Code); err != nil {
		t.Fatalf("first verify should succeed: %v", err)
	}

	_, err = svc.VerifyCode(ctx, "a@x.com", record.Code)
	if !apperrors.HasCode(err, apperrors.CodeInvalidCredential) {
		t.Errorf("replayed code should read as invalid, got %v", err)
	}
}

func TestValidateSession_LazyExpiry(t *testing.T) {
	codes := newMockCodeRepository()
	sessions := newMockSessionRepository()
	svc := newTestService(t, codes, sessions, &recordingMailer{})
	ctx := context.Background()

	record, err := svc.SendCode(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session, err := svc.VerifyCode(ctx, "a@x.com", record.Code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.ValidateSession(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Email != "a@x.com" {
		t.Fatalf("expected the live session back, got %+v", got)
	}

	sessions.byID[session.SessionID].ExpiresAt = time.Now().Add(-time.Minute)

	got, err = svc.ValidateSession(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("stale session should read as absent")
	}
	if len(sessions.liveFor("a@x.com")) != 0 {
		t.Errorf("stale session should be deleted on sight")
	}
}

func TestValidateSession_UnknownAndEmpty(t *testing.T) {
	svc := newTestService(t, newMockCodeRepository(), newMockSessionRepository(), &recordingMailer{})
	ctx := context.Background()

	got, err := svc.ValidateSession(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("unknown token should read as absent")
	}

	got, err = svc.ValidateSession(ctx, "")
	if err != nil || got != nil {
		t.Fatalf("empty token should read as absent, got %+v, %v", got, err)
	}
}
