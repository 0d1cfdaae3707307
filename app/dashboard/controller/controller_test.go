package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkgpulse/pkgpulse/app/dashboard/types"
	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStore is a mock implementation of downloads.Store for testing.
type fakeStore struct {
	rows         []timeseries.DownloadRecord
	projects     []string
	queryErr     error
	pingErr      error
	inserted     []timeseries.RawDownload
	monthlyCalls int
	weeklyCalls  int
}

func (f *fakeStore) MonthlyDownloads(context.Context, time.Time) ([]timeseries.DownloadRecord, error) {
	f.monthlyCalls++
	return f.rows, f.queryErr
}

func (f *fakeStore) WeeklyDownloads(context.Context, time.Time) ([]timeseries.DownloadRecord, error) {
	f.weeklyCalls++
	return f.rows, f.queryErr
}

func (f *fakeStore) ListProjects(context.Context) ([]string, error) {
	return f.projects, f.queryErr
}

func (f *fakeStore) InsertRawDownloads(_ context.Context, rows []timeseries.RawDownload) error {
	f.inserted = append(f.inserted, rows...)
	return f.queryErr
}

func (f *fakeStore) RefreshRollup(context.Context, string) error { return nil }

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Close() error { return nil }

func sampleRows() []timeseries.DownloadRecord {
	jan := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	return []timeseries.DownloadRecord{
		{Date: jan, Project: "dash", Downloads: 400},
		{Date: jan, Project: "streamlit", Downloads: 100},
		{Date: feb, Project: "dash", Downloads: 500},
		{Date: feb, Project: "streamlit", Downloads: 150},
	}
}

func setupTestController(t *testing.T, store *fakeStore) *Controller {
	t.Helper()

	logger := zaptest.NewLogger(t)
	resultCache, err := cache.New(context.Background(), logger)
	require.NoError(t, err)

	app := &types.App{
		Store:           store,
		Cache:           resultCache,
		Logger:          logger,
		DefaultProject:  "streamlit",
		DefaultPackages: []string{"streamlit", "dash", "panel", "voila"},
		DefaultSince:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	return &Controller{App: app}
}

func TestHandleDownloadsAppliesDeltas(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/downloads?granularity=monthly", nil)
	rec := httptest.NewRecorder()
	c.HandleDownloads(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []timeseries.DownloadRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 4)

	// First bucket per project is 0; second is the fractional change.
	assert.Equal(t, 0.0, body.Data[0].Delta)
	assert.Equal(t, 0.0, body.Data[1].Delta)
	assert.InDelta(t, 0.25, body.Data[2].Delta, 1e-9) // dash 400 -> 500
	assert.InDelta(t, 0.5, body.Data[3].Delta, 1e-9)  // streamlit 100 -> 150
}

func TestHandleDownloadsFiltersPackages(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/downloads?packages=streamlit", nil)
	rec := httptest.NewRecorder()
	c.HandleDownloads(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []timeseries.DownloadRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	for _, row := range body.Data {
		assert.Equal(t, "streamlit", row.Project)
	}
}

func TestHandleDownloadsUsesCache(t *testing.T) {
	store := &fakeStore{rows: sampleRows()}
	c := setupTestController(t, store)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/downloads?granularity=weekly", nil)
		rec := httptest.NewRecorder()
		c.HandleDownloads(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, store.weeklyCalls)
}

func TestHandleDownloadsRejectsBadInput(t *testing.T) {
	c := setupTestController(t, &fakeStore{})

	tests := []struct {
		name string
		url  string
	}{
		{"bad granularity", "/api/downloads?granularity=daily"},
		{"bad since", "/api/downloads?since=01-01-2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.HandleDownloads(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestHandleChartOverviewFiltersToOneProject(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/charts/overview", nil)
	rec := httptest.NewRecorder()
	c.HandleChartOverview(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var spec struct {
		Layer []json.RawMessage `json:"layer"`
		Data  struct {
			Values []timeseries.DownloadRecord `json:"values"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	assert.Len(t, spec.Layer, 3)

	require.Len(t, spec.Data.Values, 2)
	for _, row := range spec.Data.Values {
		assert.Equal(t, "streamlit", row.Project)
	}
}

func TestHandleChartCompareEmptySelectionHalts(t *testing.T) {
	store := &fakeStore{rows: sampleRows()}
	c := setupTestController(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/compare?packages=", nil)
	rec := httptest.NewRecorder()
	c.HandleChartCompare(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, store.monthlyCalls)
}

func TestHandleChartCompareDefaultsAndScale(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/charts/compare?scale=log", nil)
	rec := httptest.NewRecorder()
	c.HandleChartCompare(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"vconcat"`)
	assert.Contains(t, body, `"log"`)
}

func TestHandleChartCompareRejectsBadScale(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows()})

	rec := httptest.NewRecorder()
	c.HandleChartCompare(rec, httptest.NewRequest(http.MethodGet, "/api/charts/compare?scale=cubic", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePackages(t *testing.T) {
	c := setupTestController(t, &fakeStore{projects: []string{"dash", "streamlit"}})

	rec := httptest.NewRecorder()
	c.HandlePackages(rec, httptest.NewRequest(http.MethodGet, "/api/packages", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"dash", "streamlit"}, body.Data)
}

func TestHandleIngest(t *testing.T) {
	store := &fakeStore{}
	c := setupTestController(t, store)

	payload := `[{"date":"2021-01-01T00:00:00Z","project":"streamlit","downloads":12}]`
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	c.HandleIngest(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "streamlit", store.inserted[0].Project)
	assert.Contains(t, rec.Body.String(), `"inserted"`)
}

func TestHandleIngestRejectsBadRows(t *testing.T) {
	c := setupTestController(t, &fakeStore{})

	tests := []struct {
		name string
		body string
	}{
		{"not an array", `{"date":"2021-01-01T00:00:00Z"}`},
		{"missing project", `[{"date":"2021-01-01T00:00:00Z","downloads":1}]`},
		{"missing date", `[{"project":"streamlit","downloads":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.HandleIngest(rec, httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	c := setupTestController(t, &fakeStore{})

	rec := httptest.NewRecorder()
	c.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleHealthErrored(t *testing.T) {
	c := setupTestController(t, &fakeStore{pingErr: context.DeadlineExceeded})

	rec := httptest.NewRecorder()
	c.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errored"`)
}

func TestRouterRoutes(t *testing.T) {
	c := setupTestController(t, &fakeStore{rows: sampleRows(), projects: []string{"streamlit"}})
	router, err := c.NewRouter()
	require.NoError(t, err)

	srv := httptest.NewServer(WithCORS(router))
	defer srv.Close()

	for _, path := range []string{"/health", "/api/downloads", "/api/packages", "/api/charts/overview", "/"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		_ = res.Body.Close()
	}
}
