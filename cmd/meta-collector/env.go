package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ramonehamilton/meta-collector/internal/app"
	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/config"
	"github.com/ramonehamilton/meta-collector/internal/fetch"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/meta"
	"github.com/ramonehamilton/meta-collector/internal/metrics"
	"github.com/ramonehamilton/meta-collector/internal/scryfall"
	"github.com/ramonehamilton/meta-collector/internal/storage"
	"github.com/ramonehamilton/meta-collector/internal/version"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// loadConfig reads and validates the configuration, applying the global
// flags on top.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.App.LogLevel = flags.logLevel
	}
	if flags.dbPath != "" {
		cfg.App.DBPath = flags.dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.SetLevel(cfg.App.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment holds the resources a command works with.
type environment struct {
	cfg     *config.Config
	storage *storage.Service
	store   *collection.Store
	fetcher *fetch.Client
}

func openEnvironment(flags *globalFlags) (*environment, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(storage.DefaultConfig(cfg.App.DBPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	svc := storage.NewService(db)

	ttl, _ := cfg.GetCacheTTL()
	timeout, _ := cfg.GetRequestTimeout()
	fetchConfig := fetch.DefaultConfig()
	fetchConfig.UserAgent = version.UserAgent()
	fetchConfig.CacheTTL = ttl
	fetchConfig.RequestTimeout = timeout

	return &environment{
		cfg:     cfg,
		storage: svc,
		store:   collection.NewStore(svc),
		fetcher: fetch.NewClient(fetchConfig, svc.Pages()).WithMetrics(metrics.NewFetchMetrics()),
	}, nil
}

func (e *environment) Close() error {
	if stats := e.fetcher.Metrics().Stats(); stats.Requests > 0 || stats.CacheHits > 0 {
		logging.Log.WithFields(stats.Fields()).Info("fetch statistics")
	}
	return e.storage.Close()
}

// collection imports the configured collection file, if any, and returns
// the stored collection.
func (e *environment) collection(ctx context.Context) (*collection.Collection, error) {
	policy, err := e.cfg.GetDuplicatePolicy()
	if err != nil {
		return nil, err
	}

	if e.cfg.Collection.File != "" {
		entries, err := collection.LoadFile(e.cfg.Collection.File)
		if err != nil {
			return nil, err
		}
		owned, err := e.store.Import(ctx, entries, policy)
		if err != nil {
			return nil, err
		}
		logCollectionWarnings(owned)
		return owned, nil
	}

	owned, err := e.store.Load(ctx, policy)
	if err != nil {
		return nil, err
	}
	logCollectionWarnings(owned)
	return owned, nil
}

func logCollectionWarnings(owned *collection.Collection) {
	for _, w := range owned.Warnings() {
		logging.Log.WithFields(logrus.Fields{"source": "collection", "kind": w.Kind}).Warn(w.String())
	}
}

func (e *environment) loader() (*app.Loader, error) {
	metaConfig := meta.DefaultServiceConfig()
	metaConfig.Sources = e.cfg.Meta.Sources
	metaConfig.GoldfishConfig.Decks = e.cfg.Meta.GoldfishDecks
	metaConfig.Top8Config.Events = e.cfg.Meta.Top8Events

	provider, err := app.NewWebProvider(e.fetcher, metaConfig, scryfall.DefaultBaseURL)
	if err != nil {
		return nil, err
	}

	policy, err := e.cfg.GetRequiredPolicy()
	if err != nil {
		return nil, err
	}
	return app.NewLoader(provider, app.LoaderConfig{
		CopyCap: e.cfg.Meta.CopyCap,
		Options: wishlist.Options{Policy: policy},
		Metrics: e.fetcher.Metrics(),
	}), nil
}

// resolveFormat parses the format argument, falling back to the
// configured format.
func (e *environment) resolveFormat(arg string) (format.Format, error) {
	if arg == "" {
		return e.cfg.GetFormat()
	}
	return format.Parse(arg)
}

// snapshot loads the collection and the meta of f. The loader is returned
// for later refreshes.
func (e *environment) snapshot(ctx context.Context, f format.Format) (*app.Loader, *app.Snapshot, error) {
	owned, err := e.collection(ctx)
	if err != nil {
		return nil, nil, err
	}
	loader, err := e.loader()
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := loader.Load(ctx, f, owned)
	if err != nil {
		return nil, nil, err
	}
	return loader, snapshot, nil
}
