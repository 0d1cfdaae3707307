package downloads

import (
	"context"
	"fmt"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
)

// Granularities accepted by the aggregation queries and the rollup refresher.
const (
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// truncFn maps a granularity to the ClickHouse date truncation function.
func truncFn(granularity string) (string, error) {
	switch granularity {
	case GranularityWeekly:
		return "toStartOfWeek", nil
	case GranularityMonthly:
		return "toStartOfMonth", nil
	default:
		return "", fmt.Errorf("unknown granularity %q", granularity)
	}
}

// MonthlyDownloads returns per-project download counts grouped into calendar
// months, restricted to buckets at or after since and excluding denylisted
// projects. Rows come back ordered ascending by bucket then project, one row
// per (bucket, project). Delta is zero; callers run timeseries.ApplyDeltas.
func (db *DB) MonthlyDownloads(ctx context.Context, since time.Time) ([]timeseries.DownloadRecord, error) {
	return db.aggregate(ctx, GranularityMonthly, since)
}

// WeeklyDownloads is MonthlyDownloads with calendar-week buckets.
func (db *DB) WeeklyDownloads(ctx context.Context, since time.Time) ([]timeseries.DownloadRecord, error) {
	return db.aggregate(ctx, GranularityWeekly, since)
}

func (db *DB) aggregate(ctx context.Context, granularity string, since time.Time) ([]timeseries.DownloadRecord, error) {
	trunc, err := truncFn(granularity)
	if err != nil {
		return nil, err
	}

	// The start date and denylist are bound parameters, never interpolated.
	// The truncated bucket is aliased away from the raw date column so
	// GROUP BY resolves to the truncation, not the daily value.
	query := fmt.Sprintf(`
		SELECT
			%s(date) AS bucket,
			project,
			SUM(downloads) AS downloads
		FROM "%s"."pypi_downloads"
		WHERE date >= ?
		  AND project NOT IN (?)
		GROUP BY bucket, project
		ORDER BY bucket, project ASC
	`, trunc, db.Name)

	var rows []timeseries.DownloadRecord
	if err := db.Conn.Select(ctx, &rows, query, since, db.Denylist); err != nil {
		return nil, fmt.Errorf("query %s downloads failed: %w", granularity, err)
	}

	return rows, nil
}

// ListProjects returns the distinct non-denylisted project names in the fact
// table, sorted ascending.
func (db *DB) ListProjects(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT project
		FROM "%s"."pypi_downloads"
		WHERE project NOT IN (?)
		ORDER BY project ASC
	`, db.Name)

	var rows []struct {
		Project string `ch:"project"`
	}
	if err := db.Conn.Select(ctx, &rows, query, db.Denylist); err != nil {
		return nil, fmt.Errorf("query project list failed: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Project)
	}
	return out, nil
}

// RefreshRollup recomputes the rollup table for the given granularity from the
// fact table. Safe to run repeatedly; the rollup engine replaces stale buckets.
func (db *DB) RefreshRollup(ctx context.Context, granularity string) error {
	trunc, err := truncFn(granularity)
	if err != nil {
		return err
	}

	table := "downloads_monthly"
	if granularity == GranularityWeekly {
		table = "downloads_weekly"
	}

	query := fmt.Sprintf(`
		INSERT INTO "%s"."%s" (date, project, downloads)
		SELECT
			%s(date) AS bucket,
			project,
			SUM(downloads) AS downloads
		FROM "%s"."pypi_downloads"
		GROUP BY bucket, project
	`, db.Name, table, trunc, db.Name)

	if err := db.Conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("refresh %s rollup failed: %w", granularity, err)
	}
	return nil
}
