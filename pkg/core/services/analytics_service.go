package services

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

var logger = loggo.GetLogger("studio.services")

const (
	// DefaultAnalyticsRange is the summary window used when none is given.
	DefaultAnalyticsRange = 7
	topPagesLimit         = 10
)

type AnalyticsService struct {
	repo     ports.AnalyticsRepository
	location *time.Location
	now      func() time.Time
}

// NewAnalyticsService creates the visit analytics service. Calendar days
// start at midnight in location; a nil location means UTC.
func NewAnalyticsService(repo ports.AnalyticsRepository, location *time.Location) *AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	return &AnalyticsService{repo: repo, location: location, now: time.Now}
}

// ParseRange reads the dashboard's range parameter. Absent, non-numeric
// and non-positive values fall back to DefaultAnalyticsRange.
func ParseRange(raw string) int {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || days < 1 {
		return DefaultAnalyticsRange
	}
	return days
}

// Location is the zone calendar days are counted in.
func (s *AnalyticsService) Location() *time.Location {
	return s.location
}

// dayBounds returns the half-open interval [midnight, next midnight) containing t.
func (s *AnalyticsService) dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(s.location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return start, start.AddDate(0, 0, 1)
}

func (s *AnalyticsService) RecordVisit(ctx context.Context, pagePath string, vc domain.VisitContext) error {
	pagePath = strings.TrimSpace(pagePath)
	if pagePath == "" {
		return errors.NewNotValid(nil, "page_path is required")
	}

	visit := &domain.VisitRecord{
		Path:       pagePath,
		VisitorKey: orDefault(vc.VisitorKey, domain.UnknownValue),
		UserAgent:  orDefault(vc.UserAgent, domain.UnknownValue),
		Referrer:   orDefault(vc.Referrer, domain.DirectReferrer),
		ObservedAt: s.now().UTC(),
	}

	if err := s.repo.InsertVisit(ctx, visit); err != nil {
		return errors.Annotate(err, "recording visit")
	}

	// The visit is already stored; a stale summary is repaired by the next visit.
	if _, err := s.refreshSummary(ctx, visit.ObservedAt); err != nil {
		logger.Warningf("refreshing daily summary after visit to %q: %v", pagePath, err)
	}
	return nil
}

// RebuildSummary recomputes the summary row of the calendar day containing date.
func (s *AnalyticsService) RebuildSummary(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	return s.refreshSummary(ctx, date)
}

func (s *AnalyticsService) refreshSummary(ctx context.Context, day time.Time) (*domain.DailySummary, error) {
	start, end := s.dayBounds(day)

	visits, err := s.repo.ListVisits(ctx, start, end)
	if err != nil {
		return nil, errors.Annotatef(err, "listing visits of %s", start.Format(domain.DateLayout))
	}

	summary := &domain.DailySummary{
		Date:           start.Format(domain.DateLayout),
		TotalVisits:    int64(len(visits)),
		UniqueVisitors: countUniqueVisitors(visits),
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.repo.UpsertDailySummary(ctx, summary); err != nil {
		return nil, errors.Annotatef(err, "saving summary of %s", summary.Date)
	}
	return summary, nil
}

// GetAnalytics builds the dashboard report. Each figure is queried
// independently; a failed query leaves its figure at zero.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, rangeDays int) *domain.AnalyticsReport {
	if rangeDays < 1 {
		rangeDays = DefaultAnalyticsRange
	}
	start, end := s.dayBounds(s.now())

	report := &domain.AnalyticsReport{
		Summary:  []domain.DailySummary{},
		TopPages: []domain.PageCount{},
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		total, err := s.repo.CountVisits(ctx, time.Time{})
		if err != nil {
			logger.Errorf("counting all visits: %v", err)
			return
		}
		report.TotalVisits = total
	}()

	go func() {
		defer wg.Done()
		today, err := s.repo.CountVisits(ctx, start)
		if err != nil {
			logger.Errorf("counting today's visits: %v", err)
			return
		}
		report.TodayVisits = today
	}()

	go func() {
		defer wg.Done()
		visits, err := s.repo.ListVisits(ctx, start, end)
		if err != nil {
			logger.Errorf("listing today's visits: %v", err)
			return
		}
		report.UniqueVisitorsToday = countUniqueVisitors(visits)
		report.TopPages = rankPages(visits, topPagesLimit)
	}()

	go func() {
		defer wg.Done()
		since := start.AddDate(0, 0, -rangeDays).Format(domain.DateLayout)
		summaries, err := s.repo.ListDailySummaries(ctx, since)
		if err != nil {
			logger.Errorf("listing daily summaries since %s: %v", since, err)
			return
		}
		if summaries != nil {
			report.Summary = summaries
		}
	}()

	wg.Wait()
	return report
}

// PruneVisits deletes visit rows older than the given number of whole days.
// Daily summaries are kept.
func (s *AnalyticsService) PruneVisits(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 1 {
		return 0, errors.NotValidf("retention of %d days", olderThanDays)
	}
	start, _ := s.dayBounds(s.now())
	deleted, err := s.repo.DeleteVisitsBefore(ctx, start.AddDate(0, 0, -olderThanDays))
	if err != nil {
		return 0, errors.Annotate(err, "pruning visits")
	}
	return deleted, nil
}

func countUniqueVisitors(visits []domain.VisitRecord) int64 {
	seen := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		seen[v.VisitorKey] = struct{}{}
	}
	return int64(len(seen))
}

// rankPages counts visits per path, most visited first. Paths with equal
// counts keep the order in which they were first visited.
func rankPages(visits []domain.VisitRecord, limit int) []domain.PageCount {
	index := make(map[string]int)
	pages := []domain.PageCount{}
	for _, v := range visits {
		if i, ok := index[v.Path]; ok {
			pages[i].Count++
			continue
		}
		index[v.Path] = len(pages)
		pages = append(pages, domain.PageCount{Path: v.Path, Count: 1})
	}

	slices.SortStableFunc(pages, func(a, b domain.PageCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(pages) > limit {
		pages = pages[:limit]
	}
	return pages
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
