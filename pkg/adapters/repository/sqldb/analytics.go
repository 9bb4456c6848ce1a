package sqldb

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

func (r *Repository) InsertVisit(ctx context.Context, visit *domain.VisitRecord) error {
	query := `INSERT INTO page_visits (page_path, visitor_ip, user_agent, referrer, created_at) VALUES (?, ?, ?, ?, ?)`

	id, err := r.insert(ctx, query, visit.Path, visit.VisitorKey, visit.UserAgent, visit.Referrer, r.timeArg(visit.ObservedAt))
	if err != nil {
		return err
	}
	visit.ID = id
	return nil
}

func (r *Repository) CountVisits(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM page_visits`
	args := []interface{}{}

	if !since.IsZero() {
		query += " WHERE created_at >= ?"
		args = append(args, r.timeArg(since))
	}

	var count int64
	err := r.queryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *Repository) ListVisits(ctx context.Context, from, to time.Time) ([]domain.VisitRecord, error) {
	query := `SELECT id, page_path, visitor_ip, user_agent, referrer, created_at
			  FROM page_visits
			  WHERE created_at >= ? AND created_at < ?
			  ORDER BY created_at ASC, id ASC`

	rows, err := r.query(ctx, query, r.timeArg(from), r.timeArg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []domain.VisitRecord
	for rows.Next() {
		var v domain.VisitRecord
		var observedAt dbTime
		if err := rows.Scan(&v.ID, &v.Path, &v.VisitorKey, &v.UserAgent, &v.Referrer, &observedAt); err != nil {
			return nil, err
		}
		v.ObservedAt = observedAt.Time
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *Repository) DeleteVisitsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM page_visits WHERE created_at < ?`, r.timeArg(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) UpsertDailySummary(ctx context.Context, summary *domain.DailySummary) error {
	query := `INSERT INTO daily_visit_summaries (date, total_visits, unique_visitors, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(date) DO UPDATE SET
				total_visits = excluded.total_visits,
				unique_visitors = excluded.unique_visitors,
				updated_at = excluded.updated_at`

	_, err := r.exec(ctx, query, summary.Date, summary.TotalVisits, summary.UniqueVisitors, r.timeArg(summary.UpdatedAt))
	return err
}

func (r *Repository) ListDailySummaries(ctx context.Context, sinceDate string) ([]domain.DailySummary, error) {
	query := `SELECT date, total_visits, unique_visitors, updated_at
			  FROM daily_visit_summaries
			  WHERE date >= ?
			  ORDER BY date DESC`

	rows, err := r.query(ctx, query, sinceDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.DailySummary
	for rows.Next() {
		var s domain.DailySummary
		var updatedAt dbTime
		if err := rows.Scan(&s.Date, &s.TotalVisits, &s.UniqueVisitors, &updatedAt); err != nil {
			return nil, err
		}
		s.UpdatedAt = updatedAt.Time
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
