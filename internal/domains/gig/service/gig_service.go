package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigmarket-backend/internal/config"
	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/domains/gig/repository"
	"gigmarket-backend/internal/infrastructure/geo"
	"gigmarket-backend/internal/shared/utils"
	"gigmarket-backend/pkg/logger"
)

type gigService struct {
	repo   repository.GigRepository
	geoIdx geo.Index
	users  UserDirectory
	cfg    config.SearchConfig
	now    func() time.Time
}

func NewGigService(
	repo repository.GigRepository,
	geoIdx geo.Index,
	users UserDirectory,
	cfg config.SearchConfig,
) GigService {
	return &gigService{
		repo:   repo,
		geoIdx: geoIdx,
		users:  users,
		cfg:    cfg,
		now:    time.Now,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *gigService) CreateGig(
	ctx context.Context,
	posterID uuid.UUID,
	req model.CreateGigRequest,
) (*model.GigView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	status := model.GigStatus(req.Status)
	if status == "" {
		status = model.GigStatusPosted
	}

	gig := &model.Gig{
		ID:              uuid.New(),
		PosterID:        posterID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		SubCategory:     req.SubCategory,
		Urgency:         defaultString(req.Urgency, model.UrgencyMedium),
		ExperienceLevel: defaultString(req.ExperienceLevel, model.ExperienceIntermediate),
		Location:        locationFromInput(req.Location),
		Skills:          skillsFromInput(req.Skills),
		Payment: model.Payment{
			Rate:          decimal.NewFromFloat(req.Payment.Rate),
			Currency:      req.Payment.Currency,
			PaymentType:   req.Payment.PaymentType,
			TotalBudget:   utils.ParseFloatToDecimal(req.Payment.TotalBudget),
			PaymentMethod: req.Payment.PaymentMethod,
		},
		Status:    status,
		ExpiresAt: req.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Timeline != nil {
		gig.Timeline = timelineFromInput(*req.Timeline)
	}
	if status == model.GigStatusPosted {
		postedAt := now
		gig.PostedAt = &postedAt
	}

	if err := s.repo.Create(ctx, gig); err != nil {
		return nil, fmt.Errorf("failed to create gig: %w", err)
	}

	// Geo index lags the aggregate write; a brief window where search
	// misses the new location is acceptable.
	s.syncGeo(ctx, gig)

	return s.toView(ctx, gig, nil), nil
}

// =====================================================
// GET
// =====================================================

func (s *gigService) GetGig(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) (*model.GigView, error) {
	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isPoster := actorID != nil && *actorID == gig.PosterID
	if gig.Status == model.GigStatusDraft && !isPoster {
		return nil, model.ErrGigNotFound
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		// Best effort: a lost view increment never fails the read.
		logger.Warn("view increment failed", map[string]interface{}{
			"gig_id": id.String(),
			"error":  err.Error(),
		})
	} else {
		gig.Views++
	}

	sanitizeApplications(gig, actorID)
	applyLazyExpiry(gig, s.now())

	return s.toView(ctx, gig, nil), nil
}

// =====================================================
// UPDATE / DELETE
// =====================================================

func (s *gigService) UpdateGig(
	ctx context.Context,
	actorID, id uuid.UUID,
	req model.UpdateGigRequest,
) (*model.GigView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if gig.PosterID != actorID {
		return nil, model.NewForbiddenError("edit this gig")
	}
	if !gig.CanBeEdited() {
		return nil, model.NewInvalidTransitionError(gig.Status, gig.Status)
	}

	applyUpdate(gig, req)
	gig.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, gig); err != nil {
		return nil, err
	}
	gig.Version++

	s.syncGeo(ctx, gig)

	return s.toView(ctx, gig, nil), nil
}

func (s *gigService) DeleteGig(ctx context.Context, actorID, id uuid.UUID) error {
	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if gig.PosterID != actorID {
		return model.NewForbiddenError("delete this gig")
	}

	// Hard delete; embedded applications go with the aggregate.
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.geoIdx.Remove(ctx, id.String()); err != nil {
		logger.Warn("geo index removal failed", map[string]interface{}{
			"gig_id": id.String(),
			"error":  err.Error(),
		})
	}

	return nil
}

// =====================================================
// LIFECYCLE TRANSITIONS
// =====================================================

func (s *gigService) PublishGig(
	ctx context.Context,
	actorID, id uuid.UUID,
	req model.PublishGigRequest,
) (*model.GigView, error) {
	now := s.now()
	return s.transition(ctx, id, model.GigStatusPosted,
		func(g *model.Gig) error {
			if g.PosterID != actorID {
				return model.NewForbiddenError("publish this gig")
			}
			return nil
		},
		func(upd *repository.StatusUpdate) {
			upd.SetPostedAt = &now
			if req.ExpiresAt != nil {
				upd.SetExpiresAt = req.ExpiresAt
			}
		},
	)
}

func (s *gigService) StartGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error) {
	return s.transition(ctx, id, model.GigStatusInProgress,
		func(g *model.Gig) error {
			if g.PosterID != actorID && (g.AssignedTo == nil || *g.AssignedTo != actorID) {
				return model.NewForbiddenError("start this gig")
			}
			return nil
		},
		nil,
	)
}

func (s *gigService) CompleteGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error) {
	now := s.now()
	return s.transition(ctx, id, model.GigStatusCompleted,
		func(g *model.Gig) error {
			if g.PosterID != actorID && (g.AssignedTo == nil || *g.AssignedTo != actorID) {
				return model.NewForbiddenError("complete this gig")
			}
			return nil
		},
		func(upd *repository.StatusUpdate) {
			upd.SetCompletionDate = &now
		},
	)
}

func (s *gigService) CancelGig(ctx context.Context, actorID, id uuid.UUID) (*model.GigView, error) {
	return s.transition(ctx, id, model.GigStatusCancelled,
		func(g *model.Gig) error {
			if g.PosterID != actorID {
				return model.NewForbiddenError("cancel this gig")
			}
			return nil
		},
		nil,
	)
}

// transition runs authorize -> state machine check -> conditional write.
// The version predicate makes the check-then-write race-free: a
// concurrent winner bumps the version and this write affects zero rows.
func (s *gigService) transition(
	ctx context.Context,
	id uuid.UUID,
	next model.GigStatus,
	authorize func(*model.Gig) error,
	decorate func(*repository.StatusUpdate),
) (*model.GigView, error) {
	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(gig); err != nil {
		return nil, err
	}

	current := gig.EffectiveStatus(s.now())
	if !current.CanTransitionTo(next) {
		return nil, model.NewInvalidTransitionError(current, next)
	}

	upd := repository.StatusUpdate{GigID: id, Version: gig.Version, Next: next}
	if decorate != nil {
		decorate(&upd)
	}

	if err := s.repo.UpdateStatus(ctx, upd); err != nil {
		return nil, err
	}

	gig.Status = next
	gig.Version++
	if upd.SetPostedAt != nil {
		gig.PostedAt = upd.SetPostedAt
	}
	if upd.SetExpiresAt != nil {
		gig.ExpiresAt = upd.SetExpiresAt
	}
	if upd.SetCompletionDate != nil {
		gig.CompletionDate = upd.SetCompletionDate
	}

	return s.toView(ctx, gig, nil), nil
}

// =====================================================
// SCOPED LISTS / SWEEP
// =====================================================

func (s *gigService) ListPostedGigs(
	ctx context.Context,
	posterID uuid.UUID,
	page, limit int,
) ([]model.GigView, model.Pagination, error) {
	page, limit = normalizePage(page, limit, s.cfg)

	gigs, total, err := s.repo.ListByPoster(ctx, posterID, page, limit)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	now := s.now()
	views := make([]model.GigView, 0, len(gigs))
	for i := range gigs {
		applyLazyExpiry(&gigs[i], now)
		views = append(views, *s.toView(ctx, &gigs[i], nil))
	}

	return views, paginationFor(page, limit, total), nil
}

func (s *gigService) ExpireDueGigs(ctx context.Context) (int64, error) {
	swept, err := s.repo.ExpireDue(ctx)
	if err != nil {
		return 0, err
	}

	if swept > 0 {
		logger.Info("lifecycle sweep expired gigs", map[string]interface{}{
			"count": strconv.FormatInt(swept, 10),
		})
	}

	return swept, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *gigService) syncGeo(ctx context.Context, gig *model.Gig) {
	var err error
	if gig.Location.IsRemote {
		err = s.geoIdx.Remove(ctx, gig.ID.String())
	} else {
		err = s.geoIdx.Upsert(ctx, gig.ID.String(), gig.Location.Longitude, gig.Location.Latitude)
	}
	if err != nil {
		logger.Warn("geo index sync failed", map[string]interface{}{
			"gig_id": gig.ID.String(),
			"error":  err.Error(),
		})
	}
}

func (s *gigService) toView(ctx context.Context, gig *model.Gig, distance *float64) *model.GigView {
	view := &model.GigView{Gig: *gig, DistanceMeters: distance}

	if s.users != nil {
		if info, err := s.users.GetUser(ctx, gig.PosterID); err == nil {
			view.Poster = &model.UserInfo{
				ID:    utils.ParseStringToUUID(info.ID),
				Name:  info.Name,
				Email: info.Email,
			}
		}
	}

	return view
}

// sanitizeApplications hides the embedded sub-collection from everyone
// but the poster; an applicant keeps their own entry.
func sanitizeApplications(gig *model.Gig, actorID *uuid.UUID) {
	if actorID != nil && *actorID == gig.PosterID {
		return
	}

	var kept []model.Application
	if actorID != nil {
		for _, a := range gig.Applications {
			if a.ApplicantID == *actorID {
				kept = append(kept, a)
			}
		}
	}
	gig.Applications = kept
}

// applyLazyExpiry rewrites the reported status so the read path never
// shows a stale posted/active gig past its deadline.
func applyLazyExpiry(gig *model.Gig, now time.Time) {
	gig.Status = gig.EffectiveStatus(now)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func locationFromInput(in model.LocationInput) model.Location {
	return model.Location{
		Longitude:     in.Longitude,
		Latitude:      in.Latitude,
		Address:       in.Address,
		City:          in.City,
		Country:       in.Country,
		IsRemote:      in.IsRemote,
		AllowsRemote:  in.AllowsRemote,
		ServiceRadius: in.ServiceRadius,
	}
}

func skillsFromInput(in []model.SkillInput) []model.Skill {
	skills := make([]model.Skill, 0, len(in))
	for _, s := range in {
		skills = append(skills, model.Skill{
			Name:        s.Name,
			Category:    s.Category,
			Proficiency: s.Proficiency,
			IsRequired:  s.IsRequired,
		})
	}
	return skills
}

func timelineFromInput(in model.TimelineInput) model.Timeline {
	return model.Timeline{
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Deadline:      in.Deadline,
		IsFlexible:    in.IsFlexible,
		PreferredTime: in.PreferredTime,
	}
}

func applyUpdate(gig *model.Gig, req model.UpdateGigRequest) {
	if req.Title != nil {
		gig.Title = *req.Title
	}
	if req.Description != nil {
		gig.Description = *req.Description
	}
	if req.Category != nil {
		gig.Category = *req.Category
	}
	if req.SubCategory != nil {
		gig.SubCategory = req.SubCategory
	}
	if req.Urgency != nil {
		gig.Urgency = *req.Urgency
	}
	if req.ExperienceLevel != nil {
		gig.ExperienceLevel = *req.ExperienceLevel
	}
	if req.Location != nil {
		gig.Location = locationFromInput(*req.Location)
	}
	if req.Skills != nil {
		gig.Skills = skillsFromInput(req.Skills)
	}
	if req.Payment != nil {
		gig.Payment = model.Payment{
			Rate:          decimal.NewFromFloat(req.Payment.Rate),
			Currency:      req.Payment.Currency,
			PaymentType:   req.Payment.PaymentType,
			TotalBudget:   utils.ParseFloatToDecimal(req.Payment.TotalBudget),
			PaymentMethod: req.Payment.PaymentMethod,
		}
	}
	if req.Timeline != nil {
		gig.Timeline = timelineFromInput(*req.Timeline)
	}
	if req.ExpiresAt != nil {
		gig.ExpiresAt = req.ExpiresAt
	}
}

func normalizePage(page, limit int, cfg config.SearchConfig) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = cfg.DefaultPageSize
	}
	if limit > cfg.MaxPageSize {
		limit = cfg.MaxPageSize
	}
	return page, limit
}

func paginationFor(page, limit, total int) model.Pagination {
	return model.Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page*limit < total,
	}
}
