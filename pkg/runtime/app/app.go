package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	cataloghandler "github.com/de-tools/tco-atlas/pkg/handlers/catalog"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/server"
	"github.com/de-tools/tco-atlas/pkg/services/calculator"
	"github.com/de-tools/tco-atlas/pkg/services/config"
	"github.com/de-tools/tco-atlas/pkg/services/cost"
	"github.com/de-tools/tco-atlas/pkg/services/matcher"
	"github.com/de-tools/tco-atlas/pkg/services/pricesync"
	"github.com/de-tools/tco-atlas/pkg/store/catalog"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb/history"
	"github.com/de-tools/tco-atlas/pkg/store/pricing"
	"github.com/de-tools/tco-atlas/pkg/store/storage"
	"github.com/rs/zerolog"
)

type Options struct {
	// Source overrides price_sync.source when set.
	Source string
	// Storage overrides the backend resolved from the catalog paths. Used in tests.
	Storage storage.Storage
}

// App holds every long-lived component built from the service config.
type App struct {
	Config     config.Config
	Holders    map[string]*catalog.Holder
	Registry   cost.Registry
	Calculator calculator.Calculator
	// Syncer is nil unless catalogs.aws.path is set.
	Syncer *pricesync.Syncer
	// Scheduler is nil unless price_sync.enabled is set.
	Scheduler *pricesync.Scheduler

	db *sql.DB
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	a := &App{
		Config:  cfg,
		Holders: make(map[string]*catalog.Holder, len(config.CatalogProviders)),
	}

	assumptions, err := config.LoadAssumptions(cfg.Assumptions.Path)
	if err != nil {
		return nil, err
	}

	models := make([]cost.Model, 0, len(config.CatalogProviders)+2)
	for _, provider := range config.CatalogProviders {
		catalogCfg := cfg.Catalogs[provider]

		snapshot, err := loadCatalog(ctx, provider, catalogCfg.Path, cfg.PriceSync.AWSProfile, opts.Storage)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("provider", provider).
			Str("location", snapshot.Location).
			Int("skus", len(snapshot.SKUs)).
			Msg("catalog loaded")

		holder := catalog.NewHolder(provider, snapshot)
		a.Holders[provider] = holder

		m, err := matcher.New(holder, catalogCfg.Matcher())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s matcher: %w", provider, err)
		}
		model, err := cost.NewCatalogModel(provider, m, catalogCfg.UnitRates())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s cost model: %w", provider, err)
		}
		models = append(models, model)
	}

	onprem, err := cost.NewTCOModel(domain.TargetOnPrem, assumptions.OnPrem)
	if err != nil {
		return nil, fmt.Errorf("failed to create onprem cost model: %w", err)
	}
	kubernetes, err := cost.NewTCOModel(domain.TargetKubernetes, assumptions.Kubernetes)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes cost model: %w", err)
	}
	models = append(models, onprem, kubernetes)

	if a.Registry, err = cost.NewRegistry(models...); err != nil {
		return nil, err
	}
	if a.Calculator, err = calculator.New(a.Registry); err != nil {
		return nil, err
	}

	if cfg.Catalogs[domain.TargetAWS].Path != "" {
		if err := a.buildSyncer(ctx, opts); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	if cfg.PriceSync.Enabled {
		if a.Syncer == nil {
			_ = a.Close()
			return nil, fmt.Errorf("price_sync.enabled requires catalogs.aws.path")
		}
		a.Scheduler, err = pricesync.NewScheduler(a.Syncer, pricesync.ScheduleConfig{
			Hour:      cfg.PriceSync.Hour,
			Minute:    cfg.PriceSync.Minute,
			WriteBack: cfg.PriceSync.WriteBack,
			Location:  cfg.PriceSync.Location,
		}, *logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to create price refresher schedule: %w", err)
		}
	}

	return a, nil
}

func loadCatalog(ctx context.Context, provider, location, awsProfile string, override storage.Storage) (*domain.Catalog, error) {
	if location == "" {
		return catalog.Default(provider)
	}

	backend, path, err := resolveStorage(ctx, location, awsProfile, override)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogLoad, location, err)
	}
	return catalog.Load(ctx, provider, backend, path)
}

func resolveStorage(ctx context.Context, location, awsProfile string, override storage.Storage) (storage.Storage, string, error) {
	if override != nil {
		return override, location, nil
	}
	return storage.ForLocation(ctx, location, storage.Options{AWSProfile: awsProfile})
}

func (a *App) buildSyncer(ctx context.Context, opts Options) error {
	logger := zerolog.Ctx(ctx)
	syncCfg := a.Config.PriceSync

	source, err := newSource(ctx, syncCfg, opts.Source, *logger)
	if err != nil {
		return err
	}

	catalogBackend, catalogPath, err := resolveStorage(ctx, a.Config.Catalogs[domain.TargetAWS].Path, syncCfg.AWSProfile, opts.Storage)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog storage: %w", err)
	}
	cacheBackend, cachePath, err := resolveStorage(ctx, syncCfg.CachePath, syncCfg.AWSProfile, opts.Storage)
	if err != nil {
		return fmt.Errorf("failed to resolve price cache storage: %w", err)
	}
	cache, err := pricing.NewStore(cacheBackend, cachePath)
	if err != nil {
		return err
	}

	var historyStore history.Store
	if a.Config.History.DBPath != "" {
		a.db, err = duckdb.NewDB(duckdb.Settings{DbPath: a.Config.History.DBPath})
		if err != nil {
			return fmt.Errorf("failed to create DuckDB instance: %w", err)
		}
		if historyStore, err = history.NewStore(a.db); err != nil {
			return fmt.Errorf("failed to create history store: %w", err)
		}
	}

	a.Syncer, err = pricesync.NewSyncer(pricesync.Config{
		Provider:    domain.TargetAWS,
		Source:      source,
		Catalog:     catalogBackend,
		CatalogPath: catalogPath,
		Holder:      a.Holders[domain.TargetAWS],
		Cache:       cache,
		History:     historyStore,
		Location:    syncCfg.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to create price refresher: %w", err)
	}
	return nil
}

func newSource(ctx context.Context, cfg config.PriceSyncConfig, override string, logger zerolog.Logger) (pricesync.Source, error) {
	name := cfg.Source
	if override != "" {
		name = override
	}

	switch name {
	case pricesync.SourcePublic:
		return pricesync.NewPublicSource(pricesync.PublicSourceOptions{
			BaseURL:  cfg.OffersURL,
			RetryMax: 3,
			Timeout:  2 * time.Minute,
			Logger:   logger,
		}), nil
	case pricesync.SourceAPI:
		return pricesync.NewAPISourceFromConfig(ctx, cfg.AWSProfile)
	default:
		return nil, fmt.Errorf("unknown price source %q", name)
	}
}

// CatalogSources returns the holders in provider order.
func (a *App) CatalogSources() []cataloghandler.Source {
	sources := make([]cataloghandler.Source, 0, len(a.Holders))
	for _, provider := range config.CatalogProviders {
		if h, ok := a.Holders[provider]; ok {
			sources = append(sources, h)
		}
	}
	return sources
}

// ServerConfig assembles the HTTP server around the app components.
func (a *App) ServerConfig(logger zerolog.Logger) server.Config {
	deps := server.Dependencies{
		Logger:     logger,
		Calculator: a.Calculator,
		Catalogs:   a.CatalogSources(),
	}
	if a.Syncer != nil {
		deps.Syncer = a.Syncer
	}
	if a.Scheduler != nil {
		deps.Scheduler = a.Scheduler
	}

	return server.Config{
		Addr:            a.Config.Server.Addr(),
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		CORSOrigins:     a.Config.Server.CORSOrigins,
		Dependencies:    deps,
	}
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
