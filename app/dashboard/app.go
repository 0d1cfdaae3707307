package dashboard

import (
	"context"
	"time"

	"github.com/pkgpulse/pkgpulse/app/dashboard/rollup"
	"github.com/pkgpulse/pkgpulse/app/dashboard/types"
	"github.com/pkgpulse/pkgpulse/pkg/cache"
	"github.com/pkgpulse/pkgpulse/pkg/db/downloads"
	"github.com/pkgpulse/pkgpulse/pkg/logging"
	"github.com/pkgpulse/pkgpulse/pkg/utils"
	"go.uber.org/zap"
)

// Initialize initializes the application.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	store, storeErr := downloads.New(ctx, logger)
	if storeErr != nil {
		logger.Fatal("Unable to initialize downloads store", zap.Error(storeErr))
	}

	resultCache, cacheErr := cache.New(ctx, logger)
	if cacheErr != nil {
		logger.Fatal("Unable to initialize result cache", zap.Error(cacheErr))
	}

	app := &types.App{
		Store:           store,
		Cache:           resultCache,
		Logger:          logger,
		DefaultProject:  utils.Env("DEFAULT_PROJECT", "streamlit"),
		DefaultPackages: utils.EnvList("DEFAULT_PACKAGES", []string{"streamlit", "dash", "panel", "voila"}),
		DefaultSince:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if utils.EnvBool("ROLLUP_ENABLED", true) {
		app.Rollup = rollup.New(store, logger)
		if err := app.Rollup.Start(ctx); err != nil {
			logger.Fatal("Unable to start rollup scheduler", zap.Error(err))
		}
	} else {
		logger.Info("Rollup scheduler disabled")
	}

	return app
}
