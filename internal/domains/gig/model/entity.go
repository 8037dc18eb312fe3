package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// GIG STATUS CONSTANTS
// =====================================================
type GigStatus string

const (
	GigStatusDraft      GigStatus = "draft"
	GigStatusPosted     GigStatus = "posted"
	GigStatusActive     GigStatus = "active"
	GigStatusAssigned   GigStatus = "assigned"
	GigStatusInProgress GigStatus = "in_progress"
	GigStatusCompleted  GigStatus = "completed"
	GigStatusCancelled  GigStatus = "cancelled"
	GigStatusExpired    GigStatus = "expired"
)

// PublicStatuses is the default visibility set for search.
var PublicStatuses = []GigStatus{GigStatusPosted, GigStatusActive}

// =====================================================
// APPLICATION STATUS CONSTANTS
// =====================================================
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// =====================================================
// ENUM CONSTANTS
// =====================================================
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
	UrgencyUrgent = "urgent"
)

const (
	ExperienceEntry        = "entry"
	ExperienceIntermediate = "intermediate"
	ExperienceExperienced  = "experienced"
	ExperienceExpert       = "expert"
)

const (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"
)

const (
	PaymentTypeHourly = "hourly"
	PaymentTypeFixed  = "fixed"
	PaymentTypeDaily  = "daily"
	PaymentTypeWeekly = "weekly"
)

// =====================================================
// ENTITY: Gig
// =====================================================
type Gig struct {
	ID       uuid.UUID `json:"id"`
	PosterID uuid.UUID `json:"poster_id"`

	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	SubCategory     *string `json:"sub_category,omitempty"`
	Urgency         string  `json:"urgency"`
	ExperienceLevel string  `json:"experience_level"`

	Location Location `json:"location"`
	Skills   []Skill  `json:"skills"`
	Payment  Payment  `json:"payment"`
	Timeline Timeline `json:"timeline"`

	Status         GigStatus  `json:"status"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	Views             int        `json:"views"`
	ApplicationsCount int        `json:"applications_count"`
	AssignedTo        *uuid.UUID `json:"assigned_to,omitempty"`

	// Applications is the embedded sub-collection owned by the gig.
	// It is loaded with the aggregate and never addressed on its own.
	Applications []Application `json:"applications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is the optimistic concurrency token for the aggregate.
	Version int `json:"version"`
}

type Location struct {
	Longitude     float64  `json:"longitude"`
	Latitude      float64  `json:"latitude"`
	Address       *string  `json:"address,omitempty"`
	City          *string  `json:"city,omitempty"`
	Country       *string  `json:"country,omitempty"`
	IsRemote      bool     `json:"is_remote"`
	AllowsRemote  bool     `json:"allows_remote"`
	ServiceRadius *float64 `json:"service_radius,omitempty"` // meters
}

type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
	IsRequired  bool   `json:"is_required"`
}

type Payment struct {
	Rate          decimal.Decimal  `json:"rate"`
	Currency      string           `json:"currency"`
	PaymentType   string           `json:"payment_type"`
	TotalBudget   *decimal.Decimal `json:"total_budget,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
}

type Timeline struct {
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	IsFlexible    bool       `json:"is_flexible"`
	PreferredTime *string    `json:"preferred_time,omitempty"`
}

// =====================================================
// ENTITY: Application
// =====================================================
type Application struct {
	ID          uuid.UUID         `json:"id"`
	GigID       uuid.UUID         `json:"gig_id"`
	ApplicantID uuid.UUID         `json:"applicant_id"`
	Status      ApplicationStatus `json:"status"`

	ProposedRate      *decimal.Decimal `json:"proposed_rate,omitempty"`
	Message           *string          `json:"message,omitempty"`
	PortfolioLinks    []string         `json:"portfolio_links,omitempty"`
	EstimatedDuration *string          `json:"estimated_duration,omitempty"`
	Availability      *string          `json:"availability,omitempty"`

	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// =====================================================
// STATE MACHINE
// =====================================================

// allowedTransitions lists the legal forward edges. Absorbing states
// (cancelled, expired) are handled separately in CanTransitionTo.
var allowedTransitions = map[GigStatus][]GigStatus{
	GigStatusDraft:      {GigStatusPosted},
	GigStatusPosted:     {GigStatusActive, GigStatusAssigned},
	GigStatusActive:     {GigStatusAssigned},
	GigStatusAssigned:   {GigStatusInProgress},
	GigStatusInProgress: {GigStatusCompleted},
}

// IsTerminal reports whether no further transition is possible.
func (s GigStatus) IsTerminal() bool {
	return s == GigStatusCompleted || s == GigStatusCancelled || s == GigStatusExpired
}

// CanTransitionTo checks the state machine: monotonic along the forward
// chain, with cancelled reachable from any non-terminal state and expired
// reachable from posted/active only.
func (s GigStatus) CanTransitionTo(next GigStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == GigStatusCancelled {
		return true
	}
	if next == GigStatusExpired {
		return s == GigStatusPosted || s == GigStatusActive
	}
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// =====================================================
// PREDICATES
// =====================================================

// IsExpiredAt reports whether the gig should be treated as expired at t,
// regardless of what is persisted.
func (g *Gig) IsExpiredAt(t time.Time) bool {
	if g.ExpiresAt == nil {
		return false
	}
	if g.Status != GigStatusPosted && g.Status != GigStatusActive {
		return false
	}
	return !g.ExpiresAt.After(t)
}

// EffectiveStatus applies lazy expiry: a gig whose deadline has passed is
// reported as expired even before the sweep persists the transition.
func (g *Gig) EffectiveStatus(t time.Time) GigStatus {
	if g.IsExpiredAt(t) {
		return GigStatusExpired
	}
	return g.Status
}

// IsAcceptingApplications reports whether apply is allowed at t.
func (g *Gig) IsAcceptingApplications(t time.Time) bool {
	s := g.EffectiveStatus(t)
	return s == GigStatusPosted || s == GigStatusActive
}

// CanBeEdited reports whether the poster may still edit descriptive fields.
func (g *Gig) CanBeEdited() bool {
	return g.Status == GigStatusDraft || g.Status == GigStatusPosted || g.Status == GigStatusActive
}

// AcceptedApplication returns the accepted application, if any.
func (g *Gig) AcceptedApplication() *Application {
	for i := range g.Applications {
		if g.Applications[i].Status == ApplicationStatusAccepted {
			return &g.Applications[i]
		}
	}
	return nil
}

// ApplicationByID looks up an embedded application.
func (g *Gig) ApplicationByID(id uuid.UUID) *Application {
	for i := range g.Applications {
		if g.Applications[i].ID == id {
			return &g.Applications[i]
		}
	}
	return nil
}

// HasApplicationFrom reports whether the applicant already applied.
func (g *Gig) HasApplicationFrom(applicantID uuid.UUID) bool {
	for i := range g.Applications {
		if g.Applications[i].ApplicantID == applicantID {
			return true
		}
	}
	return false
}

// ValidGigStatus reports whether s names a known status.
func ValidGigStatus(s string) bool {
	switch GigStatus(s) {
	case GigStatusDraft, GigStatusPosted, GigStatusActive, GigStatusAssigned,
		GigStatusInProgress, GigStatusCompleted, GigStatusCancelled, GigStatusExpired:
		return true
	}
	return false
}
