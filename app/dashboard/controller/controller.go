package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkgpulse/pkgpulse/app/dashboard/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods("GET")

	r.HandleFunc("/api/downloads", c.HandleDownloads).Methods("GET")
	r.HandleFunc("/api/packages", c.HandlePackages).Methods("GET")
	r.HandleFunc("/api/charts/overview", c.HandleChartOverview).Methods("GET")
	r.HandleFunc("/api/charts/compare", c.HandleChartCompare).Methods("GET")
	r.HandleFunc("/api/ingest", c.HandleIngest).Methods("POST")

	r.PathPrefix("/").Handler(c.PageHandler()).Methods("GET")

	return r, nil
}

// WithCORS wraps the router so the dashboard page can be hosted separately
// from the API during development.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
