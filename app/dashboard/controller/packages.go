package controller

import (
	"net/http"

	"go.uber.org/zap"
)

// HandlePackages returns the distinct package names present in the fact table.
// Endpoint: GET /api/packages
func (c *Controller) HandlePackages(w http.ResponseWriter, r *http.Request) {
	names, err := c.App.Store.ListProjects(r.Context())
	if err != nil {
		c.App.Logger.Error("Package list query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": names,
	})
}
