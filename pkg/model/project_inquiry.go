package model

import "time"

const (
	InquiryInProgress = "in_progress"
	InquirySubmitted  = "submitted"
)

// ProjectInquiry is a draft or submitted multi-step intake form. The client
// retains the id (e.g. in local storage) and patches the record as the user
// moves through the wizard.
type ProjectInquiry struct {
	ID          string `json:"id" bson:"_id"`
	CurrentStep int    `json:"current_step" bson:"current_step"`
	Status      string `json:"status" bson:"status" validate:"required,oneof=in_progress submitted"`

	ProjectType        string   `json:"project_type,omitempty" bson:"project_type,omitempty"`
	ProjectDescription string   `json:"project_description,omitempty" bson:"project_description,omitempty"`
	TargetAudience     string   `json:"target_audience,omitempty" bson:"target_audience,omitempty"`
	Goals              []string `json:"goals,omitempty" bson:"goals,omitempty"`
	Features           []string `json:"features,omitempty" bson:"features,omitempty"`
	DesignStyle        string   `json:"design_style,omitempty" bson:"design_style,omitempty"`
	HasExistingBrand   *bool    `json:"has_existing_brand,omitempty" bson:"has_existing_brand,omitempty"`
	PageCount          string   `json:"page_count,omitempty" bson:"page_count,omitempty"`
	Budget             string   `json:"budget,omitempty" bson:"budget,omitempty"`
	Timeline           string   `json:"timeline,omitempty" bson:"timeline,omitempty"`
	CompanyName        string   `json:"company_name,omitempty" bson:"company_name,omitempty"`
	Website            string   `json:"website,omitempty" bson:"website,omitempty"`
	ReferralSource     string   `json:"referral_source,omitempty" bson:"referral_source,omitempty"`
	ContactName        string   `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	ContactEmail       string   `json:"contact_email,omitempty" bson:"contact_email,omitempty"`
	BookCall           *bool    `json:"book_call,omitempty" bson:"book_call,omitempty"`

	CreatedAt time.Time `json:"-" bson:"created_at"`
	UpdatedAt time.Time `json:"-" bson:"updated_at"`
}

// Apply copies every non-nil field of the patch onto the inquiry. List fields
// are replaced wholesale, matching the patch contract.
func (p *ProjectInquiry) Apply(u *ProjectInquiryUpdate) {
	if u.CurrentStep != nil {
		p.CurrentStep = *u.CurrentStep
	}
	if u.ProjectType != nil {
		p.ProjectType = *u.ProjectType
	}
	if u.ProjectDescription != nil {
		p.ProjectDescription = *u.ProjectDescription
	}
	if u.TargetAudience != nil {
		p.TargetAudience = *u.TargetAudience
	}
	if u.Goals != nil {
		p.Goals = *u.Goals
	}
	if u.Features != nil {
		p.Features = *u.Features
	}
	if u.DesignStyle != nil {
		p.DesignStyle = *u.DesignStyle
	}
	if u.HasExistingBrand != nil {
		p.HasExistingBrand = u.HasExistingBrand
	}
	if u.PageCount != nil {
		p.PageCount = *u.PageCount
	}
	if u.Budget != nil {
		p.Budget = *u.Budget
	}
	if u.Timeline != nil {
		p.Timeline = *u.Timeline
	}
	if u.CompanyName != nil {
		p.CompanyName = *u.CompanyName
	}
	if u.Website != nil {
		p.Website = *u.Website
	}
	if u.ReferralSource != nil {
		p.ReferralSource = *u.ReferralSource
	}
	if u.ContactName != nil {
		p.ContactName = *u.ContactName
	}
	if u.ContactEmail != nil {
		p.ContactEmail = *u.ContactEmail
	}
	if u.BookCall != nil {
		p.BookCall = u.BookCall
	}
}

// ProjectInquiryUpdate is a partial patch: only non-nil fields change. List
// fields are full-array replacement, never a server-side toggle.
type ProjectInquiryUpdate struct {
	CurrentStep *int `json:"current_step,omitempty" validate:"omitempty,min=0,max=20"`

	ProjectType        *string   `json:"project_type,omitempty"`
	ProjectDescription *string   `json:"project_description,omitempty"`
	TargetAudience     *string   `json:"target_audience,omitempty"`
	Goals              *[]string `json:"goals,omitempty"`
	Features           *[]string `json:"features,omitempty"`
	DesignStyle        *string   `json:"design_style,omitempty"`
	HasExistingBrand   *bool     `json:"has_existing_brand,omitempty"`
	PageCount          *string   `json:"page_count,omitempty"`
	Budget             *string   `json:"budget,omitempty"`
	Timeline           *string   `json:"timeline,omitempty"`
	CompanyName        *string   `json:"company_name,omitempty"`
	Website            *string   `json:"website,omitempty"`
	ReferralSource     *string   `json:"referral_source,omitempty"`
	ContactName        *string   `json:"contact_name,omitempty"`
	ContactEmail       *string   `json:"contact_email,omitempty" validate:"omitempty,email"`
	BookCall           *bool     `json:"book_call,omitempty"`
}
