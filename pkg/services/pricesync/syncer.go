package pricesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/metrics"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/models/store"
	"github.com/de-tools/tco-atlas/pkg/store/catalog"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb/history"
	"github.com/de-tools/tco-atlas/pkg/store/pricing"
	"github.com/de-tools/tco-atlas/pkg/store/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SyncOptions struct {
	WriteBack bool
	// Location overrides the configured location for this run.
	Location string
}

type Config struct {
	Provider    string
	Source      Source
	Catalog     storage.Storage
	CatalogPath string
	// Holder receives the refreshed snapshot on write-back. Optional.
	Holder *catalog.Holder
	Cache  pricing.Store
	// History records every run. Optional.
	History  history.Store
	Location string
}

// Syncer refreshes catalog prices from a Source. Concurrent syncs are serialized.
type Syncer struct {
	mu sync.Mutex

	provider    string
	source      Source
	catalog     storage.Storage
	catalogPath string
	holder      *catalog.Holder
	cache       pricing.Store
	history     history.Store
	location    string
	now         func() time.Time
}

func NewSyncer(cfg Config) (*Syncer, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("price source is nil")
	}
	if cfg.Catalog == nil || cfg.CatalogPath == "" {
		return nil, fmt.Errorf("catalog storage and path are required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("price cache is nil")
	}
	if cfg.Holder != nil && cfg.Holder.Provider() != cfg.Provider {
		return nil, fmt.Errorf("holder provider %q does not match %q", cfg.Holder.Provider(), cfg.Provider)
	}
	if _, err := ResolveLocation(cfg.Location); err != nil {
		return nil, err
	}

	return &Syncer{
		provider:    cfg.Provider,
		source:      cfg.Source,
		catalog:     cfg.Catalog,
		catalogPath: cfg.CatalogPath,
		holder:      cfg.Holder,
		cache:       cfg.Cache,
		history:     cfg.History,
		location:    cfg.Location,
		now:         time.Now,
	}, nil
}

func (s *Syncer) Provider() string {
	return s.provider
}

// Sync fetches prices for every SKU of the catalog and returns the rounded
// mapping, with nil for SKUs the source has no price for. The cache is always
// written; the catalog only when opts.WriteBack is set. On failure the current
// catalog stays untouched.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (map[string]*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	location := opts.Location
	if location == "" {
		location = s.location
	}
	loc, err := ResolveLocation(location)
	if err != nil {
		return nil, err
	}

	run := domain.SyncRun{
		ID:        uuid.NewString(),
		Provider:  s.provider,
		Source:    s.source.Name(),
		Location:  loc.Region,
		Status:    domain.SyncStatusRunning,
		StartedAt: s.now().UTC(),
		WriteBack: opts.WriteBack,
	}

	logger := zerolog.Ctx(ctx).With().
		Str("run_id", run.ID).
		Str("provider", run.Provider).
		Str("source", run.Source).
		Str("location", loc.Region).
		Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Bool("write_back", opts.WriteBack).Msg("starting price sync")

	prices, err := s.sync(ctx, loc, opts.WriteBack, &run)
	s.finish(ctx, &run, prices, err)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (s *Syncer) sync(ctx context.Context, loc Location, writeBack bool, run *domain.SyncRun) (map[string]*float64, error) {
	records, err := catalog.ReadRecords(ctx, s.catalog, s.catalogPath)
	if err != nil {
		return nil, err
	}

	skus := make([]string, 0, len(records))
	for _, rec := range records {
		skus = append(skus, rec.ID())
	}
	run.SKUsTotal = len(skus)

	found, err := s.source.Lookup(ctx, skus, loc)
	if err != nil {
		if !errors.Is(err, domain.ErrPricingSourceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrPricingSourceUnavailable, err)
		}
		return nil, err
	}

	prices := make(map[string]*float64, len(skus))
	for _, sku := range skus {
		prices[sku] = pricing.RoundPrice(found[sku])
		if prices[sku] != nil {
			run.SKUsPriced++
		}
	}

	if err := s.cache.Save(ctx, prices); err != nil {
		return nil, err
	}

	if writeBack {
		if err := s.writeBack(ctx, records, prices); err != nil {
			return nil, err
		}
	}

	return prices, nil
}

// writeBack updates price_per_hour in the catalog file and publishes the new snapshot.
// SKUs without a fresh price keep their current price.
func (s *Syncer) writeBack(ctx context.Context, records []store.SKURecord, prices map[string]*float64) error {
	for i := range records {
		price := prices[records[i].ID()]
		if price == nil {
			continue
		}
		records[i].PricePerHour = price
		records[i].PricePerMonth = nil
	}

	data, err := catalog.EncodeRecords(catalog.FormatOf(s.catalogPath), records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.catalog.Write(ctx, s.catalogPath, data); err != nil {
		return fmt.Errorf("write catalog %s: %w", s.catalogPath, err)
	}

	if s.holder != nil {
		s.holder.Replace(catalog.NewCatalog(s.provider, s.catalogPath, records))
	}

	zerolog.Ctx(ctx).Info().Str("path", s.catalogPath).Msg("wrote refreshed catalog")
	return nil
}

func (s *Syncer) finish(ctx context.Context, run *domain.SyncRun, prices map[string]*float64, syncErr error) {
	logger := zerolog.Ctx(ctx)
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = domain.SyncStatusFinished
	if syncErr != nil {
		msg := syncErr.Error()
		run.Status = domain.SyncStatusFailed
		run.Error = &msg
		logger.Error().Err(syncErr).Msg("price sync failed; keeping current catalog")
	} else {
		logger.Info().
			Int("skus_total", run.SKUsTotal).
			Int("skus_priced", run.SKUsPriced).
			Msg("price sync finished")
	}

	metrics.ObserveSyncRun(*run)

	if s.history == nil {
		return
	}

	records := make([]store.PriceRecord, 0, len(prices))
	for _, sku := range sortedKeys(prices) {
		records = append(records, store.PriceRecord{
			RunID:        run.ID,
			SKU:          sku,
			PricePerHour: prices[sku],
			ObservedAt:   finished,
		})
	}
	if err := s.history.RecordRun(ctx, adapters.MapSyncRunDomainToStore(*run), records); err != nil {
		logger.Error().Err(err).Msg("failed to record price sync run")
	}
}

// History returns the most recent runs of this syncer's provider.
func (s *Syncer) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if s.history == nil {
		return []domain.SyncRun{}, nil
	}

	runs, err := s.history.ListRuns(ctx, s.provider, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SyncRun, 0, len(runs))
	for _, run := range runs {
		result = append(result, adapters.MapSyncRunStoreToDomain(run))
	}
	return result, nil
}

// SKUHistory returns the observed prices of one SKU, newest first.
func (s *Syncer) SKUHistory(ctx context.Context, sku string, limit int) ([]domain.PricePoint, error) {
	if s.history == nil {
		return []domain.PricePoint{}, nil
	}

	records, err := s.history.SKUHistory(ctx, sku, limit)
	if err != nil {
		return nil, err
	}

	points := make([]domain.PricePoint, 0, len(records))
	for _, rec := range records {
		points = append(points, adapters.MapPricePointStoreToDomain(rec))
	}
	return points, nil
}
