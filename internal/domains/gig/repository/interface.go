package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigmarket-backend/internal/domains/gig/model"
)

// SearchFilter is the conjunctive filter set applied by Search. Zero
// values mean "no constraint".
type SearchFilter struct {
	Query           string
	Category        string
	Skills          []string // gig must contain at least one of these
	MinRate         *decimal.Decimal
	MaxRate         *decimal.Decimal
	PaymentType     string
	Urgency         string
	ExperienceLevel string
	Statuses        []model.GigStatus

	// PosterID scopes results to one poster. Set by the service when the
	// requested status set is wider than public visibility.
	PosterID *uuid.UUID

	// GeoCandidateIDs restricts on-site gigs to the ids returned by the
	// geo index; remote gigs bypass the restriction. Nil means no geo
	// filter.
	GeoCandidateIDs []uuid.UUID
}

// StatusUpdate is a conditional (version CAS) lifecycle write.
type StatusUpdate struct {
	GigID   uuid.UUID
	Version int
	Next    model.GigStatus

	SetPostedAt       *time.Time
	SetExpiresAt      *time.Time
	SetCompletionDate *time.Time
}

// GigRepository is the storage contract for the Gig aggregate. Every
// state-dependent mutation is conditional: it commits only when the
// persisted version (or a status predicate) still matches, and reports
// model.ErrVersionConflict otherwise.
type GigRepository interface {
	Create(ctx context.Context, gig *model.Gig) error

	// GetByID loads the full aggregate including embedded applications.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Gig, error)

	// Update persists descriptive fields, guarded by gig.Version.
	Update(ctx context.Context, gig *model.Gig) error

	// UpdateStatus persists a lifecycle transition, guarded by version.
	UpdateStatus(ctx context.Context, upd StatusUpdate) error

	// Delete hard-deletes the gig, cascading embedded applications.
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementViews bumps the view counter. Best effort; callers may
	// ignore failures.
	IncrementViews(ctx context.Context, id uuid.UUID) error

	// ExpireDue persists posted/active -> expired for every gig whose
	// deadline has passed, returning the number of rows swept.
	ExpireDue(ctx context.Context) (int64, error)

	// InsertApplication appends an application and increments
	// applications_count in one transaction. The gig-side update carries
	// the accepting-status predicate; zero rows means the gig is not
	// accepting (or gone). A unique violation on (gig_id, applicant_id)
	// maps to model.ErrDuplicateApplication.
	InsertApplication(ctx context.Context, app *model.Application) error

	// AcceptApplication atomically assigns the gig and marks the target
	// application accepted. The gig update predicate requires the known
	// version, an accepting status, and no existing assignee; losing the
	// race surfaces model.ErrVersionConflict.
	AcceptApplication(ctx context.Context, gigID, applicationID, applicantID uuid.UUID, version int) error

	// UpdateApplicationStatus moves one application from `from` to `to`
	// (withdraw, reject). Zero rows means the application was not in
	// `from` anymore.
	UpdateApplicationStatus(ctx context.Context, gigID, applicationID uuid.UUID, from, to model.ApplicationStatus) error

	// Search returns all gigs matching the filter, ordered by id
	// ascending. Ranking and pagination happen in the service layer.
	Search(ctx context.Context, filter SearchFilter) ([]model.Gig, error)

	// ListByPoster returns the poster's gigs, newest first, paginated.
	ListByPoster(ctx context.Context, posterID uuid.UUID, page, limit int) ([]model.Gig, int, error)

	// ListApplicationsByApplicant returns the actor's applications across
	// gigs, newest first, paginated.
	ListApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID, page, limit int) ([]model.ApplicationListItem, int, error)
}
