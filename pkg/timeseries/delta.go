// Package timeseries holds the pure transformations applied to aggregated
// download rows after they come back from the warehouse: period-over-period
// deltas, project filtering and per-project totals. Everything operates on
// slices in place or returns fresh slices; nothing here touches I/O.
package timeseries

import "sort"

// ApplyDeltas computes the fractional period-over-period change of downloads
// for each project's series independently and stores it in Delta.
//
// Rows must be ordered ascending by bucket within each project (the order the
// aggregation queries return). The first observed bucket of a project has no
// predecessor and gets delta 0. A zero-download previous bucket also yields 0
// rather than a division blowup; warehouses occasionally backfill empty
// buckets for renamed projects.
func ApplyDeltas(rows []DownloadRecord) {
	prev := make(map[string]uint64, 8)
	seen := make(map[string]bool, 8)

	for i := range rows {
		p := rows[i].Project
		if !seen[p] || prev[p] == 0 {
			rows[i].Delta = 0
		} else {
			rows[i].Delta = float64(rows[i].Downloads)/float64(prev[p]) - 1
		}
		seen[p] = true
		prev[p] = rows[i].Downloads
	}
}

// FilterProjects returns the rows whose project is in keep, preserving order.
// An empty keep list returns an empty slice, not the full input.
func FilterProjects(rows []DownloadRecord, keep []string) []DownloadRecord {
	want := make(map[string]bool, len(keep))
	for _, p := range keep {
		want[p] = true
	}

	out := make([]DownloadRecord, 0, len(rows))
	for _, r := range rows {
		if want[r.Project] {
			out = append(out, r)
		}
	}
	return out
}

// Projects returns the distinct project names present in rows, sorted.
func Projects(rows []DownloadRecord) []string {
	set := make(map[string]bool, 8)
	for _, r := range rows {
		set[r.Project] = true
	}

	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Totals sums downloads per project across all buckets, sorted by project name.
type ProjectTotal struct {
	Project   string `json:"project"`
	Downloads uint64 `json:"downloads"`
}

func Totals(rows []DownloadRecord) []ProjectTotal {
	sums := make(map[string]uint64, 8)
	for _, r := range rows {
		sums[r.Project] += r.Downloads
	}

	out := make([]ProjectTotal, 0, len(sums))
	for p, d := range sums {
		out = append(out, ProjectTotal{Project: p, Downloads: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Project < out[j].Project })
	return out
}
