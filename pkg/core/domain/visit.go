package domain

import "time"

// DirectReferrer is stored when a visit carries no Referer header.
const DirectReferrer = "direct"

// UnknownValue is stored when the visitor key or user agent cannot be derived.
const UnknownValue = "unknown"

// DateLayout is the calendar date format used as the daily summary key.
const DateLayout = "2006-01-02"

// VisitRecord represents one page view on the public site
type VisitRecord struct {
	ID         int64     `json:"id"`
	Path       string    `json:"page_path"`
	VisitorKey string    `json:"visitor_ip"`
	UserAgent  string    `json:"user_agent"`
	Referrer   string    `json:"referrer"`
	ObservedAt time.Time `json:"created_at"`
}

// VisitContext is the request metadata a visit is recorded with.
type VisitContext struct {
	VisitorKey string
	UserAgent  string
	Referrer   string
}

// DailySummary is the per-date aggregate of visit rows. It is recomputed
// from the rows of its date, never incremented.
type DailySummary struct {
	Date           string    `json:"date"` // YYYY-MM-DD
	TotalVisits    int64     `json:"total_visits"`
	UniqueVisitors int64     `json:"unique_visitors"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PageCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// AnalyticsReport is the admin dashboard payload
type AnalyticsReport struct {
	TotalVisits         int64          `json:"totalVisits"`
	TodayVisits         int64          `json:"todayVisits"`
	UniqueVisitorsToday int64          `json:"uniqueVisitorsToday"`
	Summary             []DailySummary `json:"summary"`
	TopPages            []PageCount    `json:"topPages"`
}
