package downloads

import (
	"context"
	"fmt"

	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
	"go.uber.org/zap"
)

// InsertRawDownloads batch-inserts daily fact rows. Rows for denylisted
// projects are stored as-is; the denylist is applied at read time so it can
// change without rewriting history.
func (db *DB) InsertRawDownloads(ctx context.Context, rows []timeseries.RawDownload) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."pypi_downloads" (date, project, downloads)`, db.Name)

	batch, err := db.Conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare downloads batch failed: %w", err)
	}

	for _, r := range rows {
		if err := batch.Append(r.Date, r.Project, r.Downloads); err != nil {
			return fmt.Errorf("append download row failed: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send downloads batch failed: %w", err)
	}

	db.Logger.Debug("Inserted download rows", zap.Int("rows", len(rows)))
	return nil
}
