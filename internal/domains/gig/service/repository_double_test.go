package service

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/domains/gig/repository"
)

// memGigRepository is an in-memory stand-in for the Postgres repository
// with the same conditional-write semantics: version CAS on gig
// mutations, status predicates on application writes. Safe for
// concurrent use so race tests exercise the real contention path.
type memGigRepository struct {
	mu   sync.Mutex
	gigs map[uuid.UUID]*model.Gig
	now  func() time.Time

	// beforeAccept, when set, runs before AcceptApplication takes the
	// lock, so a test can interleave a competing write.
	beforeAccept func()
}

func newMemGigRepository() *memGigRepository {
	return &memGigRepository{
		gigs: make(map[uuid.UUID]*model.Gig),
		now:  time.Now,
	}
}

func copyGig(g *model.Gig) *model.Gig {
	c := *g
	c.Applications = append([]model.Application(nil), g.Applications...)
	c.Skills = append([]model.Skill(nil), g.Skills...)
	return &c
}

func (r *memGigRepository) Create(ctx context.Context, gig *model.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gigs[gig.ID] = copyGig(gig)
	return nil
}

func (r *memGigRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[id]
	if !ok {
		return nil, model.ErrGigNotFound
	}
	return copyGig(g), nil
}

func (r *memGigRepository) Update(ctx context.Context, gig *model.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.gigs[gig.ID]
	if !ok || stored.Version != gig.Version {
		return model.ErrVersionConflict
	}
	updated := copyGig(gig)
	updated.Applications = append([]model.Application(nil), stored.Applications...)
	updated.Version = stored.Version + 1
	r.gigs[gig.ID] = updated
	return nil
}

func (r *memGigRepository) UpdateStatus(ctx context.Context, upd repository.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[upd.GigID]
	if !ok || g.Version != upd.Version {
		return model.ErrVersionConflict
	}
	g.Status = upd.Next
	g.Version++
	g.UpdatedAt = r.now()
	if upd.SetPostedAt != nil {
		g.PostedAt = upd.SetPostedAt
	}
	if upd.SetExpiresAt != nil {
		g.ExpiresAt = upd.SetExpiresAt
	}
	if upd.SetCompletionDate != nil {
		g.CompletionDate = upd.SetCompletionDate
	}
	return nil
}

func (r *memGigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.gigs[id]; !ok {
		return model.ErrGigNotFound
	}
	delete(r.gigs, id)
	return nil
}

func (r *memGigRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gigs[id]; ok {
		g.Views++
	}
	return nil
}

func (r *memGigRepository) ExpireDue(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	now := r.now()
	for _, g := range r.gigs {
		if g.IsExpiredAt(now) {
			g.Status = model.GigStatusExpired
			g.Version++
			swept++
		}
	}
	return swept, nil
}

func (r *memGigRepository) InsertApplication(ctx context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[app.GigID]
	if !ok || !g.IsAcceptingApplications(r.now()) {
		return model.ErrGigNotAcceptingApplications
	}
	for _, existing := range g.Applications {
		if existing.ApplicantID == app.ApplicantID {
			return model.ErrDuplicateApplication
		}
	}
	g.Applications = append(g.Applications, *app)
	g.ApplicationsCount++
	g.Version++
	return nil
}

func (r *memGigRepository) AcceptApplication(
	ctx context.Context,
	gigID, applicationID, applicantID uuid.UUID,
	version int,
) error {
	if r.beforeAccept != nil {
		r.beforeAccept()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[gigID]
	if !ok {
		return model.ErrVersionConflict
	}
	accepting := g.Status == model.GigStatusPosted || g.Status == model.GigStatusActive
	if g.Version != version || !accepting || g.AssignedTo != nil {
		return model.ErrVersionConflict
	}

	app := g.ApplicationByID(applicationID)
	if app == nil || app.Status != model.ApplicationStatusPending {
		return model.ErrApplicationNotPending
	}

	g.Status = model.GigStatusAssigned
	assignee := applicantID
	g.AssignedTo = &assignee
	g.Version++
	app.Status = model.ApplicationStatusAccepted
	app.UpdatedAt = r.now()
	return nil
}

func (r *memGigRepository) UpdateApplicationStatus(
	ctx context.Context,
	gigID, applicationID uuid.UUID,
	from, to model.ApplicationStatus,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.gigs[gigID]
	if !ok {
		return model.ErrApplicationNotPending
	}
	app := g.ApplicationByID(applicationID)
	if app == nil || app.Status != from {
		return model.ErrApplicationNotPending
	}
	app.Status = to
	app.UpdatedAt = r.now()
	return nil
}

func (r *memGigRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]model.Gig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Gig
	for _, g := range r.gigs {
		if matchesFilter(g, filter) {
			out = append(out, *copyGig(g))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func matchesFilter(g *model.Gig, f repository.SearchFilter) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(g.Title), q) &&
			!strings.Contains(strings.ToLower(g.Description), q) &&
			!strings.Contains(strings.ToLower(g.Category), q) {
			return false
		}
	}
	if f.Category != "" && g.Category != f.Category {
		return false
	}
	if len(f.Skills) > 0 {
		found := false
		for _, want := range f.Skills {
			for _, have := range g.Skills {
				if strings.EqualFold(have.Name, want) {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.MinRate != nil && g.Payment.Rate.LessThan(*f.MinRate) {
		return false
	}
	if f.MaxRate != nil && g.Payment.Rate.GreaterThan(*f.MaxRate) {
		return false
	}
	if f.PaymentType != "" && g.Payment.PaymentType != f.PaymentType {
		return false
	}
	if f.Urgency != "" && g.Urgency != f.Urgency {
		return false
	}
	if f.ExperienceLevel != "" && g.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if g.Status == s {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if f.PosterID != nil && g.PosterID != *f.PosterID {
		return false
	}
	if f.GeoCandidateIDs != nil && !g.Location.IsRemote {
		ok := false
		for _, id := range f.GeoCandidateIDs {
			if g.ID == id {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (r *memGigRepository) ListByPoster(
	ctx context.Context,
	posterID uuid.UUID,
	page, limit int,
) ([]model.Gig, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []model.Gig
	for _, g := range r.gigs {
		if g.PosterID == posterID {
			all = append(all, *copyGig(g))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})

	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (r *memGigRepository) ListApplicationsByApplicant(
	ctx context.Context,
	applicantID uuid.UUID,
	page, limit int,
) ([]model.ApplicationListItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []model.ApplicationListItem
	for _, g := range r.gigs {
		for _, a := range g.Applications {
			if a.ApplicantID == applicantID {
				all = append(all, model.ApplicationListItem{
					Application: a,
					GigTitle:    g.Title,
					GigStatus:   g.Status,
				})
			}
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].AppliedAt.Equal(all[j].AppliedAt) {
			return all[i].AppliedAt.After(all[j].AppliedAt)
		}
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})

	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func pageSlice[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
