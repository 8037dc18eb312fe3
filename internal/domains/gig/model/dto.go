package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var errUnknownStatus = validation.NewError("validation_unknown_status", "must be a valid gig status")

// =====================================================
// SORT KEYS
// =====================================================
const (
	SortRelevance = "relevance"
	SortDistance  = "distance"
	SortNewest    = "newest"
	SortRateAsc   = "rate_asc"
	SortRateDesc  = "rate_desc"
)

// =====================================================
// CREATE / UPDATE GIG
// =====================================================

type LocationInput struct {
	Longitude     float64  `json:"longitude"`
	Latitude      float64  `json:"latitude"`
	Address       *string  `json:"address,omitempty"`
	City          *string  `json:"city,omitempty"`
	Country       *string  `json:"country,omitempty"`
	IsRemote      bool     `json:"is_remote"`
	AllowsRemote  bool     `json:"allows_remote"`
	ServiceRadius *float64 `json:"service_radius,omitempty"`
}

func (l LocationInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&l.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&l.ServiceRadius, validation.Min(0.0)),
	)
}

type SkillInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
	IsRequired  bool   `json:"is_required"`
}

func (s SkillInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&s.Category, validation.Length(0, 100)),
		validation.Field(&s.Proficiency, validation.Required, validation.In(
			ProficiencyBeginner,
			ProficiencyIntermediate,
			ProficiencyAdvanced,
			ProficiencyExpert,
		)),
	)
}

type PaymentInput struct {
	Rate          float64  `json:"rate"`
	Currency      string   `json:"currency"`
	PaymentType   string   `json:"payment_type"`
	TotalBudget   *float64 `json:"total_budget,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty"`
}

func (p PaymentInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Rate, validation.Required, validation.Min(0.0)),
		validation.Field(&p.Currency, validation.Required, is.CurrencyCode),
		validation.Field(&p.PaymentType, validation.Required, validation.In(
			PaymentTypeHourly,
			PaymentTypeFixed,
			PaymentTypeDaily,
			PaymentTypeWeekly,
		)),
		validation.Field(&p.TotalBudget, validation.Min(0.0)),
	)
}

type TimelineInput struct {
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	IsFlexible    bool       `json:"is_flexible"`
	PreferredTime *string    `json:"preferred_time,omitempty"`
}

type CreateGigRequest struct {
	Title           string         `json:"title" binding:"required"`
	Description     string         `json:"description" binding:"required"`
	Category        string         `json:"category" binding:"required"`
	SubCategory     *string        `json:"sub_category,omitempty"`
	Urgency         string         `json:"urgency"`
	ExperienceLevel string         `json:"experience_level"`
	Location        LocationInput  `json:"location"`
	Skills          []SkillInput   `json:"skills"`
	Payment         PaymentInput   `json:"payment"`
	Timeline        *TimelineInput `json:"timeline,omitempty"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	Status          string         `json:"status"` // draft or posted, defaults to posted
}

func (r CreateGigRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(5, 120)),
		validation.Field(&r.Description, validation.Required, validation.Length(20, 5000)),
		validation.Field(&r.Category, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Urgency, validation.In(
			UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent,
		)),
		validation.Field(&r.ExperienceLevel, validation.In(
			ExperienceEntry, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert,
		)),
		validation.Field(&r.Location),
		validation.Field(&r.Skills),
		validation.Field(&r.Payment),
		validation.Field(&r.Status, validation.In(
			string(GigStatusDraft), string(GigStatusPosted),
		)),
	)
}

type UpdateGigRequest struct {
	Title           *string        `json:"title,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Category        *string        `json:"category,omitempty"`
	SubCategory     *string        `json:"sub_category,omitempty"`
	Urgency         *string        `json:"urgency,omitempty"`
	ExperienceLevel *string        `json:"experience_level,omitempty"`
	Location        *LocationInput `json:"location,omitempty"`
	Skills          []SkillInput   `json:"skills,omitempty"`
	Payment         *PaymentInput  `json:"payment,omitempty"`
	Timeline        *TimelineInput `json:"timeline,omitempty"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
}

func (r UpdateGigRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(5, 120)),
		validation.Field(&r.Description, validation.Length(20, 5000)),
		validation.Field(&r.Category, validation.Length(2, 100)),
		validation.Field(&r.Urgency, validation.In(
			UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent,
		)),
		validation.Field(&r.ExperienceLevel, validation.In(
			ExperienceEntry, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert,
		)),
		validation.Field(&r.Location),
		validation.Field(&r.Skills),
		validation.Field(&r.Payment),
	)
}

// =====================================================
// PUBLISH
// =====================================================
type PublishGigRequest struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// =====================================================
// APPLY
// =====================================================
type ApplyRequest struct {
	ProposedRate      *float64 `json:"proposed_rate,omitempty"`
	Message           *string  `json:"message,omitempty"`
	PortfolioLinks    []string `json:"portfolio_links,omitempty"`
	EstimatedDuration *string  `json:"estimated_duration,omitempty"`
	Availability      *string  `json:"availability,omitempty"`
}

func (r ApplyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProposedRate, validation.Min(0.0)),
		validation.Field(&r.Message, validation.Length(0, 2000)),
		validation.Field(&r.PortfolioLinks,
			validation.Length(0, 5),
			validation.Each(is.URL),
		),
		validation.Field(&r.EstimatedDuration, validation.Length(0, 200)),
		validation.Field(&r.Availability, validation.Length(0, 200)),
	)
}

// =====================================================
// SEARCH
// =====================================================
type SearchRequest struct {
	Query           string   `form:"q"`
	Category        string   `form:"category"`
	Skills          []string `form:"skills"`
	MinRate         *float64 `form:"min_rate"`
	MaxRate         *float64 `form:"max_rate"`
	PaymentType     string   `form:"payment_type"`
	Urgency         string   `form:"urgency"`
	ExperienceLevel string   `form:"experience_level"`
	Status          string   `form:"status"`

	Longitude    *float64 `form:"longitude"`
	Latitude     *float64 `form:"latitude"`
	RadiusMeters *float64 `form:"radius"`

	Sort  string `form:"sort"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

// HasGeo reports whether a geo filter center was supplied.
func (r *SearchRequest) HasGeo() bool {
	return r.Longitude != nil && r.Latitude != nil
}

func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Sort, validation.In(
			SortRelevance, SortDistance, SortNewest, SortRateAsc, SortRateDesc,
		)),
		validation.Field(&r.PaymentType, validation.In(
			PaymentTypeHourly, PaymentTypeFixed, PaymentTypeDaily, PaymentTypeWeekly,
		)),
		validation.Field(&r.Urgency, validation.In(
			UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent,
		)),
		validation.Field(&r.ExperienceLevel, validation.In(
			ExperienceEntry, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert,
		)),
		validation.Field(&r.Status, validation.By(func(v interface{}) error {
			s, _ := v.(string)
			if s == "" || ValidGigStatus(s) {
				return nil
			}
			return errUnknownStatus
		})),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.RadiusMeters, validation.Min(0.0)),
		validation.Field(&r.MinRate, validation.Min(0.0)),
		validation.Field(&r.MaxRate, validation.Min(0.0)),
		validation.Field(&r.Page, validation.Min(0)),
		validation.Field(&r.Limit, validation.Min(0)),
	)
}

// =====================================================
// RESPONSES
// =====================================================

type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// GigView decorates a gig with search-time data.
type GigView struct {
	Gig
	Poster         *UserInfo `json:"poster,omitempty"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

type SearchResponse struct {
	Results    []GigView  `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// ApplicationListItem is the applicant-scoped view returned by
// GET /gigs/user/applications.
type ApplicationListItem struct {
	Application
	GigTitle  string    `json:"gig_title"`
	GigStatus GigStatus `json:"gig_status"`
}
