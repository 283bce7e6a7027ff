package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/bizlens/config"
	"github.com/spektr-org/bizlens/insights"
	"github.com/spektr-org/bizlens/logging"
	"github.com/spektr-org/bizlens/metrics"
	"github.com/spektr-org/bizlens/store"
)

// app carries the global flags and the loaded configuration.
type app struct {
	configPath string
	dataDir    string
	logLevel   string
	cfg        *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bizlens",
		Short:         "Business-review analytics over a Yelp-style dataset",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: $BIZLENS_CONFIG or ./bizlens.yaml)")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory holding the JSON-lines dataset")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(
		a.queryCommand(),
		a.dashboardCommand(),
		a.serveCommand(),
		a.viewsCommand(),
		a.importCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and initializes logging.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataDir != "" {
		cfg.Data.Dir = a.dataDir
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	a.cfg = cfg
	return nil
}

// openReader returns the entity reader selected by the data config and a
// function releasing it.
func (a *app) openReader(ctx context.Context) (store.Reader, func() error, error) {
	data := a.cfg.Data
	noop := func() error { return nil }
	start := time.Now()

	if data.Source == "jsonl" {
		snap, err := store.LoadJSONLines(ctx, data.Dir)
		if err != nil {
			return nil, nil, err
		}
		metrics.RecordSnapshot(snap.Counts(), time.Since(start))
		return snap, noop, nil
	}

	db, err := store.Open(data.Source, data.DSN)
	if err != nil {
		return nil, nil, err
	}
	if !data.Preload {
		return db, db.Close, nil
	}

	snap, err := store.LoadSnapshot(ctx, db)
	if cerr := db.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, nil, fmt.Errorf("preload %s: %w", data.Source, err)
	}
	metrics.RecordSnapshot(snap.Counts(), time.Since(start))
	logging.Info().Str("source", data.Source).Dur("took", time.Since(start)).Msg("database preloaded")
	return snap, noop, nil
}

func (a *app) service(r store.Reader) *insights.Service {
	l := a.cfg.Limits
	return insights.New(r, insights.WithLimits(insights.Limits{
		TopCategories:      l.TopCategories,
		ActiveUsers:        l.ActiveUsers,
		BusinessesPerUser:  l.BusinessesPerUser,
		GrowthMinTraffic:   l.GrowthMinTraffic,
		RestaurantCategory: l.RestaurantCategory,
		TopCities:          l.TopCities,
		CategoryBusinesses: l.CategoryBusinesses,
		Recommend:          l.Recommend,
	}))
}

// withService opens the reader, runs fn and releases the reader.
func (a *app) withService(ctx context.Context, fn func(*insights.Service) error) error {
	r, release, err := a.openReader(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			logging.Warn().Err(err).Msg("closing store")
		}
	}()
	return fn(a.service(r))
}
