package controller

import (
	"net/http"

	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
	"github.com/pkgpulse/pkgpulse/pkg/vega"
	"go.uber.org/zap"
)

// HandleChartOverview returns the single-series chart spec for one package.
// Endpoint: GET /api/charts/overview?granularity=&since=&package=<name>
func (c *Controller) HandleChartOverview(w http.ResponseWriter, r *http.Request) {
	spec, err := c.parseQuerySpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	project := r.URL.Query().Get("package")
	if project == "" {
		project = c.App.DefaultProject
	}

	rows, err := c.aggregatedRows(r.Context(), spec)
	if err != nil {
		c.App.Logger.Error("Overview chart query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	series := timeseries.FilterProjects(rows, []string{project})
	writeJSON(w, http.StatusOK, vega.SingleSeries(series))
}

// HandleChartCompare returns the linked line+bar comparison spec.
// An explicitly empty package selection answers 204 and the page halts the
// panel instead of rendering an empty chart.
// Endpoint: GET /api/charts/compare?granularity=&since=&packages=a,b&scale=linear|log
func (c *Controller) HandleChartCompare(w http.ResponseWriter, r *http.Request) {
	spec, err := c.parseQuerySpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logScale := false
	switch r.URL.Query().Get("scale") {
	case "", "linear":
	case "log":
		logScale = true
	default:
		writeError(w, http.StatusBadRequest, errInvalidScale.Error())
		return
	}

	packages := spec.Packages
	if !spec.PackagesSet {
		packages = c.App.DefaultPackages
	}
	if len(packages) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rows, err := c.aggregatedRows(r.Context(), spec)
	if err != nil {
		c.App.Logger.Error("Comparison chart query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	filtered := timeseries.FilterProjects(rows, packages)
	writeJSON(w, http.StatusOK, vega.Comparison(filtered, logScale))
}
