package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	inquirieserrors "atelier/internal/inquiries/errors"
	"atelier/pkg/config"
	"atelier/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Project_inquiries"

type ProjectInquiryRepository interface {
	Create(ctx context.Context, inquiry *model.ProjectInquiry) error
	FindByID(ctx context.Context, id string) (*model.ProjectInquiry, error)
	ApplyPatch(ctx context.Context, id string, update *model.ProjectInquiryUpdate) error
	Submit(ctx context.Context, id, email string, bookCall *bool) error
}

type mongoInquiryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoInquiryRepository(cfg *config.Config) ProjectInquiryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInquiryRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoInquiryRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoInquiryRepository) Create(ctx context.Context, inquiry *model.ProjectInquiry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, inquiry); err != nil {
		return fmt.Errorf("failed to create project inquiry: %w", err)
	}
	return nil
}

func (r *mongoInquiryRepository) FindByID(ctx context.Context, id string) (*model.ProjectInquiry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var inquiry model.ProjectInquiry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&inquiry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inquirieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project inquiry: %w", err)
	}

	return &inquiry, nil
}

// ApplyPatch writes only the supplied fields. List fields replace the stored
// array wholesale.
func (r *mongoInquiryRepository) ApplyPatch(ctx context.Context, id string, update *model.ProjectInquiryUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := patchDocument(update)
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to patch project inquiry: %w", err)
	}
	if result.MatchedCount == 0 {
		return inquirieserrors.ErrNotFound
	}

	return nil
}

func (r *mongoInquiryRepository) Submit(ctx context.Context, id, email string, bookCall *bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{
		"contact_email": email,
		"status":        model.InquirySubmitted,
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}
	if bookCall != nil {
		set["book_call"] = *bookCall
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to submit project inquiry: %w", err)
	}
	if result.MatchedCount == 0 {
		return inquirieserrors.ErrNotFound
	}

	return nil
}

func patchDocument(u *model.ProjectInquiryUpdate) bson.M {
	set := bson.M{}
	if u.CurrentStep != nil {
		set["current_step"] = *u.CurrentStep
	}
	if u.ProjectType != nil {
		set["project_type"] = *u.ProjectType
	}
	if u.ProjectDescription != nil {
		set["project_description"] = *u.ProjectDescription
	}
	if u.TargetAudience != nil {
		set["target_audience"] = *u.TargetAudience
	}
	if u.Goals != nil {
		set["goals"] = *u.Goals
	}
	if u.Features != nil {
		set["features"] = *u.Features
	}
	if u.DesignStyle != nil {
		set["design_style"] = *u.DesignStyle
	}
	if u.HasExistingBrand != nil {
		set["has_existing_brand"] = *u.HasExistingBrand
	}
	if u.PageCount != nil {
		set["page_count"] = *u.PageCount
	}
	if u.Budget != nil {
		set["budget"] = *u.Budget
	}
	if u.Timeline != nil {
		set["timeline"] = *u.Timeline
	}
	if u.CompanyName != nil {
		set["company_name"] = *u.CompanyName
	}
	if u.Website != nil {
		set["website"] = *u.Website
	}
	if u.ReferralSource != nil {
		set["referral_source"] = *u.ReferralSource
	}
	if u.ContactName != nil {
		set["contact_name"] = *u.ContactName
	}
	if u.ContactEmail != nil {
		set["contact_email"] = *u.ContactEmail
	}
	if u.BookCall != nil {
		set["book_call"] = *u.BookCall
	}
	return set
}
