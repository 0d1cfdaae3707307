package downloads

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkgpulse/pkgpulse/pkg/db/clickhouse"
	"github.com/pkgpulse/pkgpulse/pkg/timeseries"
	"github.com/pkgpulse/pkgpulse/pkg/utils"
	"go.uber.org/zap"
)

// Conn is the slice of the warehouse client the downloads store needs.
// *clickhouse.Client implements it; tests substitute a fake that captures queries.
type Conn interface {
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	PrepareBatch(ctx context.Context, query string) (driver.Batch, error)
	Ping(ctx context.Context) error
	Close() error
}

// Store is the query surface the dashboard consumes. Implemented by DB.
type Store interface {
	MonthlyDownloads(ctx context.Context, since time.Time) ([]timeseries.DownloadRecord, error)
	WeeklyDownloads(ctx context.Context, since time.Time) ([]timeseries.DownloadRecord, error)
	ListProjects(ctx context.Context) ([]string, error)
	InsertRawDownloads(ctx context.Context, rows []timeseries.RawDownload) error
	RefreshRollup(ctx context.Context, granularity string) error
	Ping(ctx context.Context) error
	Close() error
}

// DB is the download-analytics database: one fact table of daily per-project
// download counts plus weekly/monthly rollup tables.
type DB struct {
	Conn     Conn
	Logger   *zap.Logger
	Name     string
	Denylist []string
}

var _ Store = (*DB)(nil)

// New connects to the warehouse and ensures the downloads database and its
// tables exist. The denylist holds projects excluded from every read query
// (DENYLIST_PROJECTS env, comma separated).
func New(ctx context.Context, logger *zap.Logger) (*DB, error) {
	dbName := clickhouse.SanitizeName(utils.Env("DOWNLOADS_DB", "pkgpulse"))

	client, err := clickhouse.New(ctx, logger.With(
		zap.String("db", dbName),
		zap.String("component", "downloads_store"),
	), dbName)
	if err != nil {
		return nil, err
	}

	db := &DB{
		Conn:     &client,
		Logger:   client.Logger,
		Name:     dbName,
		Denylist: utils.EnvList("DENYLIST_PROJECTS", []string{"shiny"}),
	}

	if err := db.InitializeDB(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// InitializeDB ensures the database, the fact table and the rollup tables exist.
func (db *DB) InitializeDB(ctx context.Context) error {
	create := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s ENGINE = Atomic", db.Name)
	if err := db.Conn.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create database %s: %w", db.Name, err)
	}

	initOps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"pypi_downloads", db.initFactTable},
		{"downloads_weekly", db.initWeeklyRollup},
		{"downloads_monthly", db.initMonthlyRollup},
	}

	for _, op := range initOps {
		if err := op.fn(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", op.name, err)
		}
	}

	db.Logger.Info("Downloads database initialized", zap.String("database", db.Name))
	return nil
}

// initFactTable creates the daily fact table. Partitioned by month so rollup
// refreshes and retention drops stay cheap; ordered by (project, date) to match
// the grouped read pattern.
func (db *DB) initFactTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."pypi_downloads" (
			date Date,
			project LowCardinality(String),
			downloads UInt64
		) ENGINE = MergeTree
		PARTITION BY toYYYYMM(date)
		ORDER BY (project, date)
	`, db.Name)
	return db.Conn.Exec(ctx, query)
}

// initWeeklyRollup creates the weekly rollup table. ReplacingMergeTree keyed on
// (project, date) makes RefreshRollup idempotent: re-inserted buckets replace
// their previous version at merge time.
func (db *DB) initWeeklyRollup(ctx context.Context) error {
	return db.Conn.Exec(ctx, db.rollupDDL("downloads_weekly"))
}

func (db *DB) initMonthlyRollup(ctx context.Context) error {
	return db.Conn.Exec(ctx, db.rollupDDL("downloads_monthly"))
}

func (db *DB) rollupDDL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			date Date,
			project LowCardinality(String),
			downloads UInt64
		) ENGINE = ReplacingMergeTree
		ORDER BY (project, date)
	`, db.Name, table)
}

// Ping verifies the warehouse connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.Conn.Ping(ctx)
}

// Close terminates the underlying warehouse connection.
func (db *DB) Close() error {
	return db.Conn.Close()
}
