package service

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strings"
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

type searchService struct {
	repo   repository.GigRepository
	geoIdx geo.Index
	users  UserDirectory
	cfg    config.SearchConfig
	now    func() time.Time
}

func NewSearchService(
	repo repository.GigRepository,
	geoIdx geo.Index,
	users UserDirectory,
	cfg config.SearchConfig,
) SearchService {
	return &searchService{
		repo:   repo,
		geoIdx: geoIdx,
		users:  users,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *searchService) Search(
	ctx context.Context,
	actorID *uuid.UUID,
	req model.SearchRequest,
) (*model.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sortKey := req.Sort
	if sortKey == "" {
		sortKey = model.SortRelevance
	}
	if sortKey == model.SortDistance && !req.HasGeo() {
		return nil, model.NewInvalidSortError()
	}

	page, limit := normalizePage(req.Page, req.Limit, s.cfg)

	filter, err := s.buildFilter(actorID, req)
	if err != nil {
		return nil, err
	}

	// Geo narrows the candidate set before the SQL filter runs. Remote
	// gigs are never in the index and pass through on their own column.
	distances := map[uuid.UUID]float64{}
	if req.HasGeo() {
		radius := s.cfg.DefaultRadiusMeters
		if req.RadiusMeters != nil {
			radius = *req.RadiusMeters
		}
		if radius > s.cfg.MaxRadiusMeters {
			radius = s.cfg.MaxRadiusMeters
		}

		candidates, err := s.geoIdx.Near(ctx, *req.Longitude, *req.Latitude, radius)
		if err != nil {
			return nil, err
		}

		ids := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			id, perr := uuid.Parse(c.ID)
			if perr != nil {
				logger.Warn("geo index holds unparseable member", map[string]interface{}{
					"member": c.ID,
				})
				continue
			}
			ids = append(ids, id)
			distances[id] = c.DistanceMeters
		}

		// Non-nil even when empty so the repository still applies the
		// remote-or-candidate restriction.
		filter.GeoCandidateIDs = ids
	}

	gigs, err := s.repo.Search(ctx, *filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	matches := s.collectMatches(gigs, filter.Statuses, distances, now)
	s.rank(matches, sortKey, req)

	total := len(matches)
	pageMatches := slicePage(matches, page, limit)

	results := make([]model.GigView, 0, len(pageMatches))
	for _, m := range pageMatches {
		results = append(results, *s.toView(ctx, m.gig, actorID, m.distance))
	}

	return &model.SearchResponse{
		Results:    results,
		Pagination: paginationFor(page, limit, total),
	}, nil
}

func (s *searchService) buildFilter(actorID *uuid.UUID, req model.SearchRequest) (*repository.SearchFilter, error) {
	filter := &repository.SearchFilter{
		Query:           req.Query,
		Category:        req.Category,
		Skills:          req.Skills,
		PaymentType:     req.PaymentType,
		Urgency:         req.Urgency,
		ExperienceLevel: req.ExperienceLevel,
	}

	if req.MinRate != nil {
		min := decimal.NewFromFloat(*req.MinRate)
		filter.MinRate = &min
	}
	if req.MaxRate != nil {
		max := decimal.NewFromFloat(*req.MaxRate)
		filter.MaxRate = &max
	}

	if req.Status == "" {
		filter.Statuses = model.PublicStatuses
		return filter, nil
	}

	status := model.GigStatus(req.Status)
	filter.Statuses = []model.GigStatus{status}

	// Non-public statuses are only visible to the poster's own listing.
	if !isPublicStatus(status) {
		if actorID == nil {
			return nil, model.NewForbiddenError("search non-public gigs")
		}
		filter.PosterID = actorID
	}

	return filter, nil
}

type searchMatch struct {
	gig *model.Gig
	// distance is nil for remote gigs and for searches without a center.
	distance *float64
}

// collectMatches applies lazy expiry, drops gigs whose effective status
// left the requested set, and annotates distances.
func (s *searchService) collectMatches(
	gigs []model.Gig,
	statuses []model.GigStatus,
	distances map[uuid.UUID]float64,
	now time.Time,
) []searchMatch {
	matches := make([]searchMatch, 0, len(gigs))
	for i := range gigs {
		g := &gigs[i]
		applyLazyExpiry(g, now)
		if !statusIn(g.Status, statuses) {
			continue
		}

		m := searchMatch{gig: g}
		if d, ok := distances[g.ID]; ok && !g.Location.IsRemote {
			dist := d
			m.distance = &dist
		}
		matches = append(matches, m)
	}
	return matches
}

// =====================================================
// RANKING
// =====================================================

func (s *searchService) rank(matches []searchMatch, sortKey string, req model.SearchRequest) {
	var less func(a, b searchMatch) int

	switch sortKey {
	case model.SortDistance:
		less = func(a, b searchMatch) int {
			return compareFloat(effectiveDistance(a), effectiveDistance(b))
		}
	case model.SortNewest:
		less = func(a, b searchMatch) int {
			return listedAt(b.gig).Compare(listedAt(a.gig))
		}
	case model.SortRateAsc:
		less = func(a, b searchMatch) int {
			return a.gig.Payment.Rate.Cmp(b.gig.Payment.Rate)
		}
	case model.SortRateDesc:
		less = func(a, b searchMatch) int {
			return b.gig.Payment.Rate.Cmp(a.gig.Payment.Rate)
		}
	default: // relevance
		query := strings.ToLower(strings.TrimSpace(req.Query))
		less = func(a, b searchMatch) int {
			sa, sb := relevanceScore(a.gig, query), relevanceScore(b.gig, query)
			if sa != sb {
				if sa > sb {
					return -1
				}
				return 1
			}
			return listedAt(b.gig).Compare(listedAt(a.gig))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if c := less(matches[i], matches[j]); c != 0 {
			return c < 0
		}
		// Deterministic order for equal keys.
		return bytes.Compare(matches[i].gig.ID[:], matches[j].gig.ID[:]) < 0
	})
}

// relevanceScore is a light lexical score: title hits dominate, then
// description and category, then urgency as a small boost.
func relevanceScore(g *model.Gig, query string) int {
	score := 0

	if query != "" {
		for _, term := range strings.Fields(query) {
			if strings.Contains(strings.ToLower(g.Title), term) {
				score += 10
			}
			if strings.Contains(strings.ToLower(g.Description), term) {
				score += 3
			}
			if strings.Contains(strings.ToLower(g.Category), term) {
				score += 5
			}
			for _, sk := range g.Skills {
				if strings.Contains(strings.ToLower(sk.Name), term) {
					score += 4
					break
				}
			}
		}
	}

	switch g.Urgency {
	case model.UrgencyUrgent:
		score += 2
	case model.UrgencyHigh:
		score++
	}

	return score
}

// effectiveDistance sorts remote gigs after every located one.
func effectiveDistance(m searchMatch) float64 {
	if m.distance == nil {
		return math.Inf(1)
	}
	return *m.distance
}

// listedAt is the recency anchor: posted_at when present, created_at for
// drafts and legacy rows.
func listedAt(g *model.Gig) time.Time {
	if g.PostedAt != nil {
		return *g.PostedAt
	}
	return g.CreatedAt
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func statusIn(s model.GigStatus, set []model.GigStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func isPublicStatus(s model.GigStatus) bool {
	return statusIn(s, model.PublicStatuses)
}

func slicePage(matches []searchMatch, page, limit int) []searchMatch {
	start := (page - 1) * limit
	if start >= len(matches) {
		return nil
	}
	end := start + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end]
}

func (s *searchService) toView(ctx context.Context, gig *model.Gig, actorID *uuid.UUID, distance *float64) *model.GigView {
	copied := *gig
	sanitizeApplications(&copied, actorID)

	view := &model.GigView{Gig: copied, DistanceMeters: distance}
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
