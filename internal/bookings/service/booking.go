package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	bookingserrors "atelier/internal/bookings/errors"
	"atelier/internal/bookings/repository"
	"atelier/internal/bookings/validator"
	"atelier/pkg/config"
	apperrors "atelier/pkg/errors"
	"atelier/pkg/events"
	"atelier/pkg/model"
	"atelier/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Active-viewer counts are cosmetic: a fresh draw in [viewersMin, viewersMax]
// per availability read, never persisted.
const (
	viewersMin = 2
	viewersMax = 9
)

type BookingService interface {
	GetAvailability(ctx context.Context, date string) (*model.Availability, error)
	GetFullyBookedDates(ctx context.Context, startDate, endDate string) ([]string, error)
	Book(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	GetMyBookings(ctx context.Context, email string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) GetAvailability(ctx context.Context, date string) (*model.Availability, error) {
	if err := s.validator.ValidateDate(date); err != nil {
		return nil, apperrors.Validation("Invalid date", map[string]any{"error": err.Error()})
	}

	bookings, err := s.repo.FindConfirmedByDate(ctx, date)
	if err != nil {
		s.cfg.Log.Error("Failed to read day availability", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to read availability", err)
	}

	booked := bookedSlots(bookings)
	return &model.Availability{
		Date:          date,
		BookedSlots:   booked,
		ActiveViewers: viewersMin + rand.Intn(viewersMax-viewersMin+1),
		IsFullyBooked: len(booked) >= len(model.SlotCatalog),
	}, nil
}

func (s *bookingService) GetFullyBookedDates(ctx context.Context, startDate, endDate string) ([]string, error) {
	if err := s.validator.ValidateDateRange(startDate, endDate); err != nil {
		return nil, apperrors.Validation("Invalid date range", map[string]any{"error": err.Error()})
	}

	bookings, err := s.repo.FindConfirmedInRange(ctx, startDate, endDate)
	if err != nil {
		s.cfg.Log.Error("Failed to scan booking range",
			"start_date", startDate,
			"end_date", endDate,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to read fully booked dates", err)
	}

	slotsByDate := map[string]map[string]struct{}{}
	for _, b := range bookings {
		if slotsByDate[b.Date] == nil {
			slotsByDate[b.Date] = map[string]struct{}{}
		}
		slotsByDate[b.Date][b.Slot] = struct{}{}
	}

	full := make([]string, 0)
	for date, slots := range slotsByDate {
		if len(slots) >= len(model.SlotCatalog) {
			full = append(full, date)
		}
	}
	sort.Strings(full)

	return full, nil
}

func (s *bookingService) Book(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	// Advisory lock closes the window between the slot check and the insert;
	// the partial unique index on (date, slot, status=confirmed) is the backstop.
	lockID, err := s.acquireSlotLock(ctx, booking.Date, booking.Slot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindConfirmedBySlot(sessCtx, booking.Date, booking.Slot)
		if err != nil && !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check slot occupancy", err)
		}
		if existing != nil {
			return apperrors.Conflict(fmt.Sprintf(
				"Slot %s on %s is already booked", booking.Slot, booking.Date,
			))
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrSlotTaken) {
				return apperrors.Conflict(fmt.Sprintf(
					"Slot %s on %s is already booked", booking.Slot, booking.Date,
				))
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Info("Slot conflict", "date", booking.Date, "slot", booking.Slot)
		} else {
			s.cfg.Log.Error("Failed to create booking", "error", err)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"date", booking.Date,
		"slot", booking.Slot,
		"user_email", booking.UserEmail,
	)
	s.publish(ctx, events.TypeBookingConfirmed, booking)

	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to check booking existence", err)
	}

	// Soft-cancel only, and safe to retry.
	if booking.Status == model.BookingCancelled {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.BookingCancelled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id)
	booking.Status = model.BookingCancelled
	s.publish(ctx, events.TypeBookingCancelled, booking)

	return nil
}

func (s *bookingService) GetMyBookings(ctx context.Context, email string) ([]*model.Booking, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		// No store round trip for an anonymous caller.
		return []*model.Booking{}, nil
	}

	bookings, err := s.repo.FindConfirmedByEmail(ctx, email)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings by email", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.UserEmail = sanitizer.NormalizeEmail(b.UserEmail)
	b.Date = sanitizer.TrimAndNormalize(b.Date)
	b.Slot = sanitizer.TrimAndNormalize(b.Slot)
}

func (s *bookingService) acquireSlotLock(ctx context.Context, date, slot string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s", date, slot)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	payload := map[string]any{
		"booking_id": b.ID,
		"date":       b.Date,
		"slot":       b.Slot,
		"user_email": b.UserEmail,
	}
	if err := s.publisher.Publish(ctx, b.Date+"/"+b.Slot, eventType, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "event_type", eventType, "error", err)
	}
}

func bookedSlots(bookings []*model.Booking) []string {
	seen := map[string]struct{}{}
	for _, b := range bookings {
		seen[b.Slot] = struct{}{}
	}

	// Catalog order, so calendar UIs render slots stably.
	out := make([]string, 0, len(seen))
	for _, slot := range model.SlotCatalog {
		if _, ok := seen[slot]; ok {
			out = append(out, slot)
		}
	}
	return out
}
