package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigmarket-backend/internal/domains/gig/model"
	"gigmarket-backend/internal/infrastructure/geo"
)

// Center used by geo tests; offsets are degrees of latitude, where one
// degree is roughly 111.2 km.
const (
	centerLon = 16.37
	centerLat = 48.21
)

func newTestSearchService(repo *memGigRepository, idx geo.Index, now time.Time) *searchService {
	svc := NewSearchService(repo, idx, directoryStub{}, testSearchConfig).(*searchService)
	svc.now = fixedClock(now)
	repo.now = fixedClock(now)
	return svc
}

type searchSeed struct {
	title    string
	category string
	skills   []string
	rate     int64
	status   model.GigStatus
	remote   bool
	latShift float64
	postedAt time.Time
}

func seedSearchGig(t *testing.T, repo *memGigRepository, idx geo.Index, seed searchSeed) *model.Gig {
	t.Helper()

	if seed.title == "" {
		seed.title = "General help wanted"
	}
	if seed.category == "" {
		seed.category = "handyman"
	}
	if seed.rate == 0 {
		seed.rate = 30
	}
	if seed.status == "" {
		seed.status = model.GigStatusPosted
	}
	if seed.postedAt.IsZero() {
		seed.postedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	}

	skills := make([]model.Skill, 0, len(seed.skills))
	for _, name := range seed.skills {
		skills = append(skills, model.Skill{Name: name, Proficiency: model.ProficiencyIntermediate})
	}

	gig := &model.Gig{
		ID:              uuid.New(),
		PosterID:        uuid.New(),
		Title:           seed.title,
		Description:     "Helping hands needed, details to be discussed on site.",
		Category:        seed.category,
		Urgency:         model.UrgencyMedium,
		ExperienceLevel: model.ExperienceIntermediate,
		Location: model.Location{
			Longitude: centerLon,
			Latitude:  centerLat + seed.latShift,
			IsRemote:  seed.remote,
		},
		Skills: skills,
		Payment: model.Payment{
			Rate:        decimal.NewFromInt(seed.rate),
			Currency:    "EUR",
			PaymentType: model.PaymentTypeHourly,
		},
		Status:    seed.status,
		PostedAt:  &seed.postedAt,
		CreatedAt: seed.postedAt,
		UpdatedAt: seed.postedAt,
	}

	require.NoError(t, repo.Create(context.Background(), gig))
	if !seed.remote {
		require.NoError(t, idx.Upsert(context.Background(), gig.ID.String(),
			gig.Location.Longitude, gig.Location.Latitude))
	}
	return gig
}

func searchIDs(resp *model.SearchResponse) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids
}

// =====================================================
// VISIBILITY
// =====================================================

func TestSearchDefaultsToPublicStatuses(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	posted := seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusPosted})
	active := seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusActive})
	seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusDraft})
	seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusCompleted})
	seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusCancelled})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Pagination.Total)
	assert.ElementsMatch(t, []uuid.UUID{posted.ID, active.ID}, searchIDs(resp))
}

func TestSearchExcludesLazyExpired(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	alive := seedSearchGig(t, repo, idx, searchSeed{})
	stale := seedSearchGig(t, repo, idx, searchSeed{})

	past := now.Add(-time.Hour)
	repo.gigs[stale.ID].ExpiresAt = &past

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{alive.ID}, searchIDs(resp))
}

func TestSearchNonPublicStatusRequiresActor(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	mine := seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusDraft})
	seedSearchGig(t, repo, idx, searchSeed{status: model.GigStatusDraft})

	req := model.SearchRequest{Status: string(model.GigStatusDraft)}

	_, err := svc.Search(context.Background(), nil, req)
	assert.ErrorIs(t, err, model.ErrForbidden)

	// An authenticated actor sees only their own drafts.
	resp, err := svc.Search(context.Background(), &mine.PosterID, req)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{mine.ID}, searchIDs(resp))
}

// =====================================================
// FILTERS
// =====================================================

func TestSearchFiltersAreConjunctive(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	match := seedSearchGig(t, repo, idx, searchSeed{category: "painting", rate: 40})
	seedSearchGig(t, repo, idx, searchSeed{category: "painting", rate: 20})
	seedSearchGig(t, repo, idx, searchSeed{category: "plumbing", rate: 40})

	min := 30.0
	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{
		Category: "painting",
		MinRate:  &min,
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{match.ID}, searchIDs(resp))
}

func TestSearchSkillsMatchAny(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	welding := seedSearchGig(t, repo, idx, searchSeed{skills: []string{"welding"}})
	tiling := seedSearchGig(t, repo, idx, searchSeed{skills: []string{"tiling", "grouting"}})
	seedSearchGig(t, repo, idx, searchSeed{skills: []string{"gardening"}})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{
		Skills: []string{"Welding", "tiling"},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{welding.ID, tiling.ID}, searchIDs(resp))
}

// =====================================================
// GEO
// =====================================================

func TestSearchGeoRadius(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	near := seedSearchGig(t, repo, idx, searchSeed{latShift: 5_000 / 111_195.0})
	mid := seedSearchGig(t, repo, idx, searchSeed{latShift: 40_000 / 111_195.0})
	far := seedSearchGig(t, repo, idx, searchSeed{latShift: 60_000 / 111_195.0})
	remote := seedSearchGig(t, repo, idx, searchSeed{remote: true})

	lon, lat := centerLon, centerLat
	radius := 50_000.0
	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{
		Longitude:    &lon,
		Latitude:     &lat,
		RadiusMeters: &radius,
		Sort:         model.SortDistance,
	})
	require.NoError(t, err)

	// 5 km and 40 km are in range, 60 km is not; the remote gig always
	// qualifies and sorts last.
	require.Equal(t, 3, resp.Pagination.Total)
	assert.Equal(t, []uuid.UUID{near.ID, mid.ID, remote.ID}, searchIDs(resp))
	assert.NotContains(t, searchIDs(resp), far.ID)

	require.NotNil(t, resp.Results[0].DistanceMeters)
	assert.InDelta(t, 5_000, *resp.Results[0].DistanceMeters, 100)
	require.NotNil(t, resp.Results[1].DistanceMeters)
	assert.InDelta(t, 40_000, *resp.Results[1].DistanceMeters, 300)
	assert.Nil(t, resp.Results[2].DistanceMeters)
}

func TestSearchDistanceSortWithoutGeoRejected(t *testing.T) {
	repo := newMemGigRepository()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, geo.NewMemoryIndex(), now)

	_, err := svc.Search(context.Background(), nil, model.SearchRequest{Sort: model.SortDistance})
	assert.ErrorIs(t, err, model.ErrInvalidSort)
}

func TestSearchGeoExcludesEverythingWhenIndexEmpty(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	gig := seedSearchGig(t, repo, idx, searchSeed{})
	require.NoError(t, idx.Remove(context.Background(), gig.ID.String()))

	lon, lat := centerLon, centerLat
	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{
		Longitude: &lon,
		Latitude:  &lat,
	})
	require.NoError(t, err)
	assert.Zero(t, resp.Pagination.Total)
}

// =====================================================
// RANKING
// =====================================================

func TestSearchRateSorts(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	cheap := seedSearchGig(t, repo, idx, searchSeed{rate: 15})
	mid := seedSearchGig(t, repo, idx, searchSeed{rate: 30})
	pricey := seedSearchGig(t, repo, idx, searchSeed{rate: 60})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{Sort: model.SortRateAsc})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{cheap.ID, mid.ID, pricey.ID}, searchIDs(resp))

	resp, err = svc.Search(context.Background(), nil, model.SearchRequest{Sort: model.SortRateDesc})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{pricey.ID, mid.ID, cheap.ID}, searchIDs(resp))
}

func TestSearchNewestSort(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	old := seedSearchGig(t, repo, idx, searchSeed{postedAt: now.Add(-48 * time.Hour)})
	recent := seedSearchGig(t, repo, idx, searchSeed{postedAt: now.Add(-time.Hour)})
	middle := seedSearchGig(t, repo, idx, searchSeed{postedAt: now.Add(-24 * time.Hour)})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{Sort: model.SortNewest})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recent.ID, middle.ID, old.ID}, searchIDs(resp))
}

func TestSearchRelevancePrefersTitleHits(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	inTitle := seedSearchGig(t, repo, idx, searchSeed{title: "Garden fence repair"})
	inCategory := seedSearchGig(t, repo, idx, searchSeed{title: "Weekend helper", category: "garden"})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{Query: "garden"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, inTitle.ID, resp.Results[0].ID)
	assert.Equal(t, inCategory.ID, resp.Results[1].ID)
}

// =====================================================
// PAGINATION
// =====================================================

func TestSearchPaginationIsStable(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	// Identical sort keys everywhere; ordering falls back to gig id.
	for i := 0; i < 5; i++ {
		seedSearchGig(t, repo, idx, searchSeed{})
	}

	seen := make(map[uuid.UUID]bool)
	var pages int
	for page := 1; ; page++ {
		resp, err := svc.Search(context.Background(), nil, model.SearchRequest{
			Sort: model.SortNewest, Page: page, Limit: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, 5, resp.Pagination.Total)

		for _, id := range searchIDs(resp) {
			assert.False(t, seen[id], "gig %s appeared on two pages", id)
			seen[id] = true
		}

		pages++
		if !resp.Pagination.HasMore {
			break
		}
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 5)
}

func TestSearchLimitClamped(t *testing.T) {
	repo := newMemGigRepository()
	idx := geo.NewMemoryIndex()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestSearchService(repo, idx, now)

	seedSearchGig(t, repo, idx, searchSeed{})

	resp, err := svc.Search(context.Background(), nil, model.SearchRequest{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, testSearchConfig.MaxPageSize, resp.Pagination.Limit)

	resp, err = svc.Search(context.Background(), nil, model.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, testSearchConfig.DefaultPageSize, resp.Pagination.Limit)
	assert.Equal(t, 1, resp.Pagination.Page)
}
