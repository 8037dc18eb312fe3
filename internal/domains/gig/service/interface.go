package service

import (
	"context"

	"github.com/google/uuid"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/shared"
)

// GigService owns gig CRUD and the lifecycle state machine.
type GigService interface {
	CreateGig(ctx context.Context, posterID uuid.UUID, req model.CreateGigRequest) (*model.GigView, error)

	// GetGig returns the gig with lazy expiry applied and increments the
	// view counter best-effort. Non-posters never see drafts or the
	// applications of others.
	GetGig(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) (*model.GigView, error)

	UpdateGig(ctx context.Context, actorID, id uuid.UUID, req model.UpdateGigRequest) (*model.GigView, error)
	DeleteGig(ctx context.Context, actorID, id uuid.UUID) error

	// Lifecycle actions. Each persists a version-guarded transition and
	// fails with an InvalidTransitionError when the state machine forbids
	// the move.
	PublishGig(ctx context.Context, actorID, id uuid.UUID, req model.PublishGigRequest) (*model.GigView, error)
	StartGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error)
	CompleteGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error)
	CancelGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error)

	ListPostedGigs(ctx context.Context, posterID uuid.UUID, page, limit int) ([]model.GigView, model.Pagination, error)

	// ExpireDueGigs is the persistence half of expiry, invoked by the
	// periodic sweep. The read path applies the same rule lazily.
	ExpireDueGigs(ctx context.Context) (int64, error)
}

// ApplicationService owns the application sub-collection per gig.
type ApplicationService interface {
	Apply(ctx context.Context, applicantID, gigID uuid.UUID, req model.ApplyRequest) (*model.Application, error)
	Accept(ctx context.Context, actorID, gigID, applicationID uuid.UUID) (*model.GigView, error)
	Reject(ctx context.Context, actorID, gigID, applicationID uuid.UUID) error
	Withdraw(ctx context.Context, actorID, gigID, applicationID uuid.UUID) error

	ListMyApplications(ctx context.Context, applicantID uuid.UUID, page, limit int) ([]model.ApplicationListItem, model.Pagination, error)
}

// SearchService composes filters, geo candidates and ranking into a
// paginated result set.
type SearchService interface {
	Search(ctx context.Context, actorID *uuid.UUID, req model.SearchRequest) (*model.SearchResponse, error)
}

// UserDirectory resolves display info for joins. Declared here so the gig
// domain does not import the user domain.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*shared.UserBasicInfo, error)
}
