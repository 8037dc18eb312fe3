package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigmarket-backend/internal/config"
	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/domains/gig/repository"
	"gigmarket-backend/pkg/logger"
)

// acceptRetries bounds the CAS retry loop in Accept.
const acceptRetries = 3

type applicationService struct {
	repo repository.GigRepository
	cfg  config.SearchConfig
	now  func() time.Time
}

func NewApplicationService(repo repository.GigRepository, cfg config.SearchConfig) ApplicationService {
	return &applicationService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// =====================================================
// APPLY
// =====================================================

func (s *applicationService) Apply(
	ctx context.Context,
	applicantID, gigID uuid.UUID,
	req model.ApplyRequest,
) (*model.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gig, err := s.repo.GetByID(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.PosterID == applicantID {
		return nil, model.NewForbiddenError("apply to your own gig")
	}
	if gig.HasApplicationFrom(applicantID) {
		return nil, model.NewDuplicateApplicationError()
	}

	now := s.now()
	if !gig.IsAcceptingApplications(now) {
		return nil, model.NewNotAcceptingError(gig.EffectiveStatus(now))
	}

	app := &model.Application{
		ID:                uuid.New(),
		GigID:             gigID,
		ApplicantID:       applicantID,
		Status:            model.ApplicationStatusPending,
		Message:           req.Message,
		PortfolioLinks:    req.PortfolioLinks,
		EstimatedDuration: req.EstimatedDuration,
		Availability:      req.Availability,
		AppliedAt:         now,
		UpdatedAt:         now,
	}
	if req.ProposedRate != nil {
		rate := decimal.NewFromFloat(*req.ProposedRate)
		app.ProposedRate = &rate
	}

	// The insert re-checks the accepting status inside the transaction;
	// the checks above only short-circuit the common failures.
	if err := s.repo.InsertApplication(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// =====================================================
// ACCEPT
// =====================================================

// Accept resolves the one-winner race on the gig's version counter.
// Whoever commits the predicate-guarded assignment first wins; everyone
// else re-reads and learns the gig is already assigned. A conflict
// caused by an unrelated write (a concurrent apply also bumps the
// version) is retried with the refreshed version.
func (s *applicationService) Accept(
	ctx context.Context,
	actorID, gigID, applicationID uuid.UUID,
) (*model.GigView, error) {
	var lastErr error

	for attempt := 0; attempt < acceptRetries; attempt++ {
		gig, err := s.repo.GetByID(ctx, gigID)
		if err != nil {
			return nil, err
		}
		if gig.PosterID != actorID {
			return nil, model.NewForbiddenError("accept applications for this gig")
		}

		app := gig.ApplicationByID(applicationID)
		if app == nil {
			return nil, model.ErrApplicationNotFound
		}
		// A gig whose status left {posted, active} cannot take a winner
		// anymore, whatever moved it there.
		if gig.AssignedTo != nil || gig.AcceptedApplication() != nil || !gig.IsAcceptingApplications(s.now()) {
			return nil, model.NewAlreadyAssignedError()
		}
		if app.Status != model.ApplicationStatusPending {
			return nil, model.ErrApplicationNotPending
		}

		err = s.repo.AcceptApplication(ctx, gigID, applicationID, app.ApplicantID, gig.Version)
		if errors.Is(err, model.ErrVersionConflict) {
			// Lost the CAS; loop re-reads and either classifies the
			// loss (assigned, expired) or retries.
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		return s.reloadAfterAccept(ctx, gig, gigID), nil
	}

	return nil, lastErr
}

func (s *applicationService) reloadAfterAccept(ctx context.Context, known *model.Gig, gigID uuid.UUID) *model.GigView {
	updated, err := s.repo.GetByID(ctx, gigID)
	if err != nil {
		// Write committed; a failed re-read only costs the response body.
		logger.Warn("reload after accept failed", map[string]interface{}{
			"gig_id": gigID.String(),
			"error":  err.Error(),
		})
		return &model.GigView{Gig: *known}
	}
	return &model.GigView{Gig: *updated}
}

// =====================================================
// REJECT / WITHDRAW
// =====================================================

func (s *applicationService) Reject(ctx context.Context, actorID, gigID, applicationID uuid.UUID) error {
	gig, err := s.repo.GetByID(ctx, gigID)
	if err != nil {
		return err
	}
	if gig.PosterID != actorID {
		return model.NewForbiddenError("reject applications for this gig")
	}
	if gig.ApplicationByID(applicationID) == nil {
		return model.ErrApplicationNotFound
	}

	return s.repo.UpdateApplicationStatus(ctx, gigID, applicationID,
		model.ApplicationStatusPending, model.ApplicationStatusRejected)
}

func (s *applicationService) Withdraw(ctx context.Context, actorID, gigID, applicationID uuid.UUID) error {
	gig, err := s.repo.GetByID(ctx, gigID)
	if err != nil {
		return err
	}

	app := gig.ApplicationByID(applicationID)
	if app == nil {
		return model.ErrApplicationNotFound
	}
	if app.ApplicantID != actorID {
		return model.NewForbiddenError("withdraw this application")
	}

	// applications_count keeps counting withdrawn entries; it records
	// interest received, not live applications.
	return s.repo.UpdateApplicationStatus(ctx, gigID, applicationID,
		model.ApplicationStatusPending, model.ApplicationStatusWithdrawn)
}

// =====================================================
// LISTS
// =====================================================

func (s *applicationService) ListMyApplications(
	ctx context.Context,
	applicantID uuid.UUID,
	page, limit int,
) ([]model.ApplicationListItem, model.Pagination, error) {
	page, limit = normalizePage(page, limit, s.cfg)

	items, total, err := s.repo.ListApplicationsByApplicant(ctx, applicantID, page, limit)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	return items, paginationFor(page, limit, total), nil
}
