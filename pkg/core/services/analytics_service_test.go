package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

// memVisits is an in-memory AnalyticsRepository with injectable failures.
type memVisits struct {
	mu        sync.Mutex
	visits    []domain.VisitRecord
	summaries map[string]domain.DailySummary

	insertErr  error
	countErr   error
	listErr    error
	upsertErr  error
	summaryErr error
}

func newMemVisits() *memVisits {
	return &memVisits{summaries: map[string]domain.DailySummary{}}
}

func (m *memVisits) InsertVisit(_ context.Context, v *domain.VisitRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	v.ID = int64(len(m.visits) + 1)
	m.visits = append(m.visits, *v)
	return nil
}

func (m *memVisits) CountVisits(_ context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, v := range m.visits {
		if since.IsZero() || !v.ObservedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memVisits) ListVisits(_ context.Context, from, to time.Time) ([]domain.VisitRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.VisitRecord
	for _, v := range m.visits {
		if !v.ObservedAt.Before(from) && v.ObservedAt.Before(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVisits) DeleteVisitsBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.visits[:0]
	var deleted int64
	for _, v := range m.visits {
		if v.ObservedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	m.visits = kept
	return deleted, nil
}

func (m *memVisits) UpsertDailySummary(_ context.Context, s *domain.DailySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.summaries[s.Date] = *s
	return nil
}

func (m *memVisits) ListDailySummaries(_ context.Context, sinceDate string) ([]domain.DailySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	var out []domain.DailySummary
	for date, s := range m.summaries {
		if date >= sinceDate {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestAnalytics(repo *memVisits, now time.Time) *AnalyticsService {
	svc := NewAnalyticsService(repo, time.UTC)
	svc.now = fixedClock(now)
	return svc
}

var morning = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func visitor(ip string) domain.VisitContext {
	return domain.VisitContext{VisitorKey: ip, UserAgent: "Mozilla/5.0", Referrer: "https://example.com/"}
}

func TestParseRange(t *testing.T) {
	assert.Equal(t, 7, ParseRange(""))
	assert.Equal(t, 7, ParseRange("abc"))
	assert.Equal(t, 7, ParseRange("0"))
	assert.Equal(t, 7, ParseRange("-3"))
	assert.Equal(t, 30, ParseRange("30"))
	assert.Equal(t, 14, ParseRange(" 14 "))
}

func TestRecordVisit_DefaultsMissingContext(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)

	require.NoError(t, svc.RecordVisit(context.Background(), "/about", domain.VisitContext{}))

	require.Len(t, repo.visits, 1)
	v := repo.visits[0]
	assert.Equal(t, "/about", v.Path)
	assert.Equal(t, domain.DirectReferrer, v.Referrer)
	assert.Equal(t, domain.UnknownValue, v.VisitorKey)
	assert.Equal(t, domain.UnknownValue, v.UserAgent)
	assert.Equal(t, time.UTC, v.ObservedAt.Location())
}

func TestRecordVisit_RequiresPath(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)

	err := svc.RecordVisit(context.Background(), "   ", visitor("10.0.0.1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, "page_path is required", err.Error())
	assert.Empty(t, repo.visits)
	assert.Empty(t, repo.summaries)
}

func TestRecordVisit_StoreFailureIsReported(t *testing.T) {
	repo := newMemVisits()
	repo.insertErr = fmt.Errorf("database is locked")
	svc := newTestAnalytics(repo, morning)

	err := svc.RecordVisit(context.Background(), "/", visitor("10.0.0.1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Empty(t, repo.summaries)
}

func TestRecordVisit_SummaryFailureIsNotPropagated(t *testing.T) {
	repo := newMemVisits()
	repo.upsertErr = fmt.Errorf("constraint failed")
	svc := newTestAnalytics(repo, morning)

	require.NoError(t, svc.RecordVisit(context.Background(), "/", visitor("10.0.0.1")))
	assert.Len(t, repo.visits, 1)
	assert.Empty(t, repo.summaries)
}

func TestRecordVisit_RecomputesTodaySummary(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)
	ctx := context.Background()

	// A visit from yesterday must not leak into today's row.
	repo.visits = append(repo.visits, domain.VisitRecord{ID: 99, Path: "/", VisitorKey: "10.0.0.9", ObservedAt: morning.Add(-12 * time.Hour)})

	require.NoError(t, svc.RecordVisit(ctx, "/", visitor("10.0.0.1")))
	require.NoError(t, svc.RecordVisit(ctx, "/works", visitor("10.0.0.1")))
	require.NoError(t, svc.RecordVisit(ctx, "/", visitor("10.0.0.2")))

	summary, ok := repo.summaries["2026-10-15"]
	require.True(t, ok)
	assert.Equal(t, int64(3), summary.TotalVisits)
	assert.Equal(t, int64(2), summary.UniqueVisitors)

	// Rebuilding is idempotent: the row is recomputed, never incremented.
	rebuilt, err := svc.RebuildSummary(ctx, morning)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rebuilt.TotalVisits)
	assert.Equal(t, int64(2), rebuilt.UniqueVisitors)
	assert.Equal(t, int64(3), repo.summaries["2026-10-15"].TotalVisits)
}

func TestGetAnalytics_TopPagesAndCounts(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordVisit(ctx, "/", visitor(fmt.Sprintf("10.0.0.%d", i))))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.RecordVisit(ctx, "/works", visitor("10.0.0.1")))
	}

	report := svc.GetAnalytics(ctx, ParseRange("abc"))

	assert.Equal(t, int64(5), report.TotalVisits)
	assert.Equal(t, int64(5), report.TodayVisits)
	assert.Equal(t, int64(3), report.UniqueVisitorsToday)
	require.Len(t, report.TopPages, 2)
	assert.Equal(t, domain.PageCount{Path: "/", Count: 3}, report.TopPages[0])
	assert.Equal(t, domain.PageCount{Path: "/works", Count: 2}, report.TopPages[1])
	require.Len(t, report.Summary, 1)
	assert.Equal(t, "2026-10-15", report.Summary[0].Date)
}

func TestGetAnalytics_SameVisitorTwice(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)
	ctx := context.Background()

	require.NoError(t, svc.RecordVisit(ctx, "/", visitor("203.0.113.7")))
	require.NoError(t, svc.RecordVisit(ctx, "/news", visitor("203.0.113.7")))

	report := svc.GetAnalytics(ctx, 7)
	assert.Equal(t, int64(2), report.TodayVisits)
	assert.Equal(t, int64(1), report.UniqueVisitorsToday)
}

func TestGetAnalytics_TopPagesLimitAndTies(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, svc.RecordVisit(ctx, fmt.Sprintf("/p%d", i), visitor("10.0.0.1")))
	}
	require.NoError(t, svc.RecordVisit(ctx, "/p11", visitor("10.0.0.1")))

	report := svc.GetAnalytics(ctx, 7)
	require.Len(t, report.TopPages, 10)
	assert.Equal(t, domain.PageCount{Path: "/p11", Count: 2}, report.TopPages[0])
	// Equal counts keep first-visit order.
	assert.Equal(t, "/p0", report.TopPages[1].Path)
	assert.Equal(t, "/p8", report.TopPages[9].Path)
}

func TestGetAnalytics_SummaryWindow(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)

	for _, date := range []string{"2026-10-15", "2026-10-08", "2026-10-07", "2026-09-30"} {
		repo.summaries[date] = domain.DailySummary{Date: date, TotalVisits: 1, UniqueVisitors: 1}
	}

	report := svc.GetAnalytics(context.Background(), 7)
	require.Len(t, report.Summary, 2)
	assert.Equal(t, "2026-10-15", report.Summary[0].Date)
	assert.Equal(t, "2026-10-08", report.Summary[1].Date)
}

func TestGetAnalytics_PartialFailureDefaultsToZero(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)
	ctx := context.Background()

	require.NoError(t, svc.RecordVisit(ctx, "/", visitor("10.0.0.1")))
	repo.listErr = fmt.Errorf("timeout")
	repo.summaryErr = fmt.Errorf("timeout")

	report := svc.GetAnalytics(ctx, 7)
	assert.Equal(t, int64(1), report.TotalVisits)
	assert.Equal(t, int64(1), report.TodayVisits)
	assert.Zero(t, report.UniqueVisitorsToday)
	assert.NotNil(t, report.TopPages)
	assert.Empty(t, report.TopPages)
	assert.NotNil(t, report.Summary)
	assert.Empty(t, report.Summary)
}

func TestGetAnalytics_EmptyStore(t *testing.T) {
	svc := newTestAnalytics(newMemVisits(), morning)

	report := svc.GetAnalytics(context.Background(), 0)
	assert.Zero(t, report.TotalVisits)
	assert.Equal(t, []domain.PageCount{}, report.TopPages)
	assert.Equal(t, []domain.DailySummary{}, report.Summary)
}

func TestGetAnalytics_DayBoundaryFollowsLocation(t *testing.T) {
	repo := newMemVisits()
	bangkok := time.FixedZone("ICT", 7*60*60)
	svc := NewAnalyticsService(repo, bangkok)
	// 2026-10-15 01:00 in Bangkok is still 2026-10-14 in UTC.
	svc.now = fixedClock(time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC))
	ctx := context.Background()

	repo.visits = append(repo.visits, domain.VisitRecord{ID: 1, Path: "/", VisitorKey: "a", ObservedAt: time.Date(2026, 10, 14, 16, 59, 0, 0, time.UTC)})
	require.NoError(t, svc.RecordVisit(ctx, "/", visitor("b")))

	report := svc.GetAnalytics(ctx, 7)
	assert.Equal(t, int64(2), report.TotalVisits)
	assert.Equal(t, int64(1), report.TodayVisits)
	assert.Contains(t, repo.summaries, "2026-10-15")
}

func TestPruneVisits(t *testing.T) {
	repo := newMemVisits()
	svc := newTestAnalytics(repo, morning)

	repo.visits = []domain.VisitRecord{
		{ID: 1, Path: "/", ObservedAt: morning.AddDate(0, 0, -40)},
		{ID: 2, Path: "/", ObservedAt: morning.AddDate(0, 0, -10)},
		{ID: 3, Path: "/", ObservedAt: morning},
	}

	deleted, err := svc.PruneVisits(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, repo.visits, 2)

	_, err = svc.PruneVisits(context.Background(), 0)
	assert.True(t, errors.Is(err, errors.NotValid))
}
