package service

import (
	"context"
	"errors"
	"time"

	inquirieserrors "atelier/internal/inquiries/errors"
	"atelier/internal/inquiries/repository"
	"atelier/internal/inquiries/validator"
	"atelier/pkg/config"
	apperrors "atelier/pkg/errors"
	"atelier/pkg/events"
	"atelier/pkg/model"
	"atelier/pkg/sanitizer"

	"github.com/google/uuid"
)

type InquiryService interface {
	Get(ctx context.Context, id string) (*model.ProjectInquiry, error)
	SaveProgress(ctx context.Context, id string, update *model.ProjectInquiryUpdate) (string, error)
	Submit(ctx context.Context, id, email string, bookCall *bool) error
}

type inquiryService struct {
	repo      repository.ProjectInquiryRepository
	validator *validator.InquiryValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewInquiryService(
	repo repository.ProjectInquiryRepository,
	validator *validator.InquiryValidator,
	publisher events.Publisher,
	cfg *config.Config,
) InquiryService {
	return &inquiryService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Get resolves a draft by id, or nil when the id is empty or unknown. An
// unresolvable id is a normal outcome for a client with a stale local store.
func (s *inquiryService) Get(ctx context.Context, id string) (*model.ProjectInquiry, error) {
	if id == "" {
		return nil, nil
	}

	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, inquirieserrors.ErrNotFound) {
			return nil, nil
		}
		s.cfg.Log.Error("Failed to look up project inquiry", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to look up project inquiry", err)
	}

	return inquiry, nil
}

// SaveProgress is create-or-update under one operation: the caller never
// branches on whether the draft exists yet. An absent or unresolved id creates
// a fresh record; a resolved id takes a partial patch. Returns the record's id
// either way.
func (s *inquiryService) SaveProgress(ctx context.Context, id string, update *model.ProjectInquiryUpdate) (string, error) {
	if update == nil {
		update = &model.ProjectInquiryUpdate{}
	}
	s.sanitize(update)
	if err := s.validator.ValidatePatch(update); err != nil {
		return "", apperrors.Validation("Inquiry validation failed", map[string]any{"error": err.Error()})
	}

	if id != "" {
		err := s.repo.ApplyPatch(ctx, id, update)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, inquirieserrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to patch project inquiry", "id", id, "error", err)
			return "", apperrors.Internal("Failed to save inquiry progress", err)
		}
		// Unresolved id: fall through and start a fresh draft.
	}

	inquiry := &model.ProjectInquiry{
		ID:          uuid.NewString(),
		CurrentStep: 0,
		Status:      model.InquiryInProgress,
	}
	inquiry.Apply(update)

	if err := s.repo.Create(ctx, inquiry); err != nil {
		s.cfg.Log.Error("Failed to create project inquiry", "error", err)
		return "", apperrors.Internal("Failed to save inquiry progress", err)
	}

	s.cfg.Log.Info("Project inquiry draft created", "id", inquiry.ID)
	return inquiry.ID, nil
}

// Submit stamps the final contact fields and flips the draft to submitted.
// Unlike SaveProgress it requires the id to resolve.
func (s *inquiryService) Submit(ctx context.Context, id, email string, bookCall *bool) error {
	if id == "" {
		return apperrors.InvalidInput("Inquiry ID cannot be empty")
	}
	email = sanitizer.NormalizeEmail(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return apperrors.Validation("Invalid email", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Submit(ctx, id, email, bookCall); err != nil {
		if errors.Is(err, inquirieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Project inquiry", id)
		}
		s.cfg.Log.Error("Failed to submit project inquiry", "id", id, "error", err)
		return apperrors.Internal("Failed to submit project inquiry", err)
	}

	s.cfg.Log.Info("Project inquiry submitted", "id", id, "contact_email", email)
	s.publishSubmitted(ctx, id, email)

	return nil
}

// --- Helpers ---

func (s *inquiryService) sanitize(u *model.ProjectInquiryUpdate) {
	if u.ContactEmail != nil {
		normalized := sanitizer.NormalizeEmail(*u.ContactEmail)
		u.ContactEmail = &normalized
	}
	if u.ProjectDescription != nil {
		cleaned := sanitizer.NormalizeFreeText(*u.ProjectDescription)
		u.ProjectDescription = &cleaned
	}
	if u.ContactName != nil {
		cleaned := sanitizer.TrimAndNormalize(*u.ContactName)
		u.ContactName = &cleaned
	}
	if u.CompanyName != nil {
		cleaned := sanitizer.TrimAndNormalize(*u.CompanyName)
		u.CompanyName = &cleaned
	}
}

func (s *inquiryService) publishSubmitted(ctx context.Context, id, email string) {
	payload := map[string]any{
		"inquiry_id":    id,
		"contact_email": email,
		"submitted_at":  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.Publish(ctx, id, events.TypeInquirySubmitted, payload); err != nil {
		s.cfg.Log.Warn("Failed to publish inquiry submitted event", "error", err)
	}
}
