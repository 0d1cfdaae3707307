package types

import (
	"context"
	"net/http"
	"time"

	"github.com/pkgpulse/pkgpulse/app/dashboard/rollup"
	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/db/downloads"
	"go.uber.org/zap"
)

type App struct {
	Store  downloads.Store
	Cache  *cache.Cache
	Rollup *rollup.Scheduler
	// Zap Logger
	Logger *zap.Logger
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server

	// DefaultProject is the package highlighted on the single-series panel.
	DefaultProject string
	// DefaultPackages pre-populates the comparison multi-select.
	DefaultPackages []string
	// DefaultSince bounds queries when the caller sends no start date.
	DefaultSince time.Time
}

// Start starts the application and blocks until the context is cancelled,
// then drains the HTTP server and releases the store and cache.
func (a *App) Start(ctx context.Context) {
	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.Rollup != nil {
		a.Rollup.Stop()
	}

	if err := a.Cache.Close(); err != nil {
		a.Logger.Error("Failed to close cache", zap.Error(err))
	}

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	_ = a.Server.Shutdown(shutdownCtx)
	a.Logger.Info("Dashboard stopped")
}
