package timeseries

import "time"

// DownloadRecord is one (bucket, project) row of aggregated download counts.
// Date is the start of the week or month bucket. Delta is the fractional
// change vs. the project's previous bucket; the first bucket of a project is 0.
type DownloadRecord struct {
	Date      time.Time `json:"date" ch:"bucket"`
	Project   string    `json:"project" ch:"project"`
	Downloads uint64    `json:"downloads" ch:"downloads"`
	Delta     float64   `json:"delta"`
}

// RawDownload is one daily fact row as ingested from the package index logs.
type RawDownload struct {
	Date      time.Time `json:"date" ch:"date"`
	Project   string    `json:"project" ch:"project"`
	Downloads uint64    `json:"downloads" ch:"downloads"`
}
