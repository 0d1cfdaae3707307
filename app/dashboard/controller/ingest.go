package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
	"go.uber.org/zap"
)

const maxIngestBody = 32 << 20 // 32 MiB

// HandleIngest batch-inserts daily download fact rows.
// Endpoint: POST /api/ingest with a JSON array of {date, project, downloads}.
func (c *Controller) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var rows []timeseries.RawDownload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body, expected a JSON array of download rows")
		return
	}

	for _, row := range rows {
		if row.Project == "" || row.Date.IsZero() {
			writeError(w, http.StatusBadRequest, "rows require a project and a date")
			return
		}
	}

	if err := c.App.Store.InsertRawDownloads(r.Context(), rows); err != nil {
		c.App.Logger.Error("Ingest failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "insert failed")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"inserted": len(rows),
	})
}
