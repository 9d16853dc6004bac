package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	bookingserrors "atelier/internal/bookings/errors"
	"atelier/internal/bookings/validator"
	"atelier/pkg/config"
	mongotx "atelier/pkg/db/mongo"
	apperrors "atelier/pkg/errors"
	"atelier/pkg/events"
	"atelier/pkg/logger"
	"atelier/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	byID        map[string]*model.Booking
	nextID      int
	findByEmail func(ctx context.Context, email string) ([]*model.Booking, error)
	emailCalled bool
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{byID: map[string]*model.Booking{}}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.nextID++
	b := *booking
	b.ID = fmt.Sprintf("id-%d", m.nextID)
	b.CreatedAt = time.Now()
	m.byID[b.ID] = &b
	booking.ID = b.ID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if b, ok := m.byID[id]; ok {
		copy := *b
		return &copy, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindConfirmedBySlot(ctx context.Context, date, slot string) (*model.Booking, error) {
	for _, b := range m.byID {
		if b.Date == date && b.Slot == slot && b.Status == model.BookingConfirmed {
			copy := *b
			return &copy, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindConfirmedByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.byID {
		if b.Date == date && b.Status == model.BookingConfirmed {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) FindConfirmedInRange(ctx context.Context, startDate, endDate string) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.byID {
		if b.Date >= startDate && b.Date <= endDate && b.Status == model.BookingConfirmed {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) FindConfirmedByEmail(ctx context.Context, email string) ([]*model.Booking, error) {
	m.emailCalled = true
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	var out []*model.Booking
	for _, b := range m.byID {
		if b.UserEmail == email && b.Status == model.BookingConfirmed {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	b, ok := m.byID[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	b.Status = status
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	held       map[string]bool
}

func newMockSlotLockRepository() *mockSlotLockRepository {
	return &mockSlotLockRepository{held: map[string]bool{}}
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	if m.held[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	delete(m.held, lockID)
	return nil
}

func newTestService(t *testing.T, repo *mockBookingRepository, locks *mockSlotLockRepository) BookingService {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Service: "test"})
	cfg := &config.Config{
		Log:         log,
		SlotLockTTL: 10 * time.Second,
	}
	v := validator.NewBookingValidator(log)
	publisher := events.NewPublisher(nil, "", "test", log)
	return NewBookingService(repo, locks, v, publisher, cfg)
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestBook_SlotExclusivity(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	first, err := svc.Book(ctx, &model.Booking{Date: "2025-06-01", Slot: "10:00", UserEmail: "a@x.com"})
	if err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}
	if first.Status != model.BookingConfirmed {
		t.Errorf("expected status confirmed, got %s", first.Status)
	}

	_, err = svc.Book(ctx, &model.Booking{Date: "2025-06-01", Slot: "10:00", UserEmail: "b@y.com"})
	if err == nil {
		t.Fatal("second booking at same (date, slot) should fail")
	}
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT, got %v", err)
	}

	confirmed := 0
	for _, b := range repo.byID {
		if b.Date == "2025-06-01" && b.Slot == "10:00" && b.Status == model.BookingConfirmed {
			confirmed++
		}
	}
	if confirmed != 1 {
		t.Errorf("expected exactly one confirmed booking at the key, got %d", confirmed)
	}
}

func TestBook_DifferentSlotsSameDay(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-01", Slot: "10:00", UserEmail: "a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-01", Slot: "11:00", UserEmail: "a@x.com"}); err != nil {
		t.Fatalf("different slot should succeed: %v", err)
	}
}

func TestBook_LockContention(t *testing.T) {
	repo := newMockBookingRepository()
	locks := newMockSlotLockRepository()
	locks.createFunc = func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	svc := newTestService(t, repo, locks)

	_, err := svc.Book(context.Background(), &model.Booking{Date: "2025-06-01", Slot: "10:00", UserEmail: "a@x.com"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("held lock should surface as CONFLICT, got %v", err)
	}
}

func TestBook_NormalizesEmail(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())

	b, err := svc.Book(context.Background(), &model.Booking{Date: "2025-06-01", Slot: "10:00", UserEmail: "  A@X.Com "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.UserEmail != "a@x.com" {
		t.Errorf("expected normalized email, got %q", b.UserEmail)
	}
}

func TestBook_InvalidSlot(t *testing.T) {
	svc := newTestService(t, newMockBookingRepository(), newMockSlotLockRepository())

	_, err := svc.Book(context.Background(), &model.Booking{Date: "2025-06-01", Slot: "09:30", UserEmail: "a@x.com"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected VALIDATION_ERROR for slot outside catalog, got %v", err)
	}
}

func TestGetAvailability_FullyBooked(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	for _, slot := range model.SlotCatalog {
		if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-02", Slot: slot, UserEmail: "a@x.com"}); err != nil {
			t.Fatalf("booking slot %s: %v", slot, err)
		}
	}

	avail, err := svc.GetAvailability(ctx, "2025-06-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !avail.IsFullyBooked {
		t.Error("expected day with all 8 slots confirmed to be fully booked")
	}
	if len(avail.BookedSlots) != len(model.SlotCatalog) {
		t.Errorf("expected %d booked slots, got %d", len(model.SlotCatalog), len(avail.BookedSlots))
	}
	if avail.ActiveViewers < viewersMin || avail.ActiveViewers > viewersMax {
		t.Errorf("active viewers %d outside [%d, %d]", avail.ActiveViewers, viewersMin, viewersMax)
	}
}

func TestGetAvailability_SevenOfEight(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	for _, slot := range model.SlotCatalog[:len(model.SlotCatalog)-1] {
		if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-03", Slot: slot, UserEmail: "a@x.com"}); err != nil {
			t.Fatalf("booking slot %s: %v", slot, err)
		}
	}

	avail, err := svc.GetAvailability(ctx, "2025-06-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avail.IsFullyBooked {
		t.Error("7 of 8 slots booked must not be fully booked")
	}
}

func TestGetAvailability_CancelledSlotsFreeUp(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	b, err := svc.Book(ctx, &model.Booking{Date: "2025-06-04", Slot: "12:00", UserEmail: "a@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	avail, err := svc.GetAvailability(ctx, "2025-06-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(avail.BookedSlots) != 0 {
		t.Errorf("cancelled booking should not occupy its slot, got %v", avail.BookedSlots)
	}
}

func TestGetFullyBookedDates(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	for _, slot := range model.SlotCatalog {
		if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-10", Slot: slot, UserEmail: "a@x.com"}); err != nil {
			t.Fatalf("booking slot %s: %v", slot, err)
		}
	}
	if _, err := svc.Book(ctx, &model.Booking{Date: "2025-06-11", Slot: "10:00", UserEmail: "a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	full, err := svc.GetFullyBookedDates(ctx, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full) != 1 || full[0] != "2025-06-10" {
		t.Errorf("expected [2025-06-10], got %v", full)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	b, err := svc.Book(ctx, &model.Booking{Date: "2025-06-05", Slot: "15:00", UserEmail: "a@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("retried cancel must be a no-op, got: %v", err)
	}

	stored, _ := repo.FindByID(ctx, b.ID)
	if stored.Status != model.BookingCancelled {
		t.Errorf("expected cancelled status, got %s", stored.Status)
	}
}

func TestCancel_UnknownID(t *testing.T) {
	svc := newTestService(t, newMockBookingRepository(), newMockSlotLockRepository())

	err := svc.Cancel(context.Background(), "missing")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetMyBookings_EmptyEmailShortCircuits(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())

	bookings, err := svc.GetMyBookings(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("expected empty result, got %d", len(bookings))
	}
	if repo.emailCalled {
		t.Error("empty email must not hit the repository")
	}
}

func TestGetMyBookings_OnlyConfirmed(t *testing.T) {
	repo := newMockBookingRepository()
	svc := newTestService(t, repo, newMockSlotLockRepository())
	ctx := context.Background()

	kept, err := svc.Book(ctx, &model.Booking{Date: "2025-06-06", Slot: "10:00", UserEmail: "a@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gone, err := svc.Book(ctx, &model.Booking{Date: "2025-06-06", Slot: "11:00", UserEmail: "a@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Cancel(ctx, gone.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	bookings, err := svc.GetMyBookings(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 || bookings[0].ID != kept.ID {
		t.Errorf("expected only the confirmed booking, got %v", bookings)
	}
}
