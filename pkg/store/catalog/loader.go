package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/models/store"
	"github.com/de-tools/tco-atlas/pkg/store/storage"
)

//go:embed defaults/*.json
var defaults embed.FS

// ReadRecords reads and validates the raw records at path.
func ReadRecords(ctx context.Context, backend storage.Storage, path string) ([]store.SKURecord, error) {
	raw, err := backend.Read(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: catalog %s does not exist", domain.ErrCatalogLoad, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogLoad, path, err)
	}

	return parseRecords(path, FormatOf(path), raw)
}

// Load reads the catalog at path into an immutable snapshot.
func Load(ctx context.Context, provider string, backend storage.Storage, path string) (*domain.Catalog, error) {
	records, err := ReadRecords(ctx, backend, path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(provider, path, records), nil
}

// Default returns the catalog bundled with the binary for the provider.
func Default(provider string) (*domain.Catalog, error) {
	path := fmt.Sprintf("defaults/%s.json", provider)
	raw, err := defaults.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: no bundled catalog for provider %q", domain.ErrCatalogLoad, provider)
	}

	records, err := parseRecords(path, FormatJSON, raw)
	if err != nil {
		return nil, err
	}
	return NewCatalog(provider, "embedded:"+path, records), nil
}

// NewCatalog maps validated records into a snapshot, preserving their order.
func NewCatalog(provider, location string, records []store.SKURecord) *domain.Catalog {
	skus := make([]domain.SKU, 0, len(records))
	for _, rec := range records {
		skus = append(skus, adapters.MapSKURecordStoreToDomain(rec))
	}

	return &domain.Catalog{
		Provider: provider,
		Location: location,
		LoadedAt: time.Now().UTC(),
		SKUs:     skus,
	}
}

func parseRecords(path string, format Format, raw []byte) ([]store.SKURecord, error) {
	records, err := DecodeRecords(format, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogLoad, path, err)
	}
	if err := Validate(records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCatalogLoad, path, err)
	}
	return records, nil
}

// Validate checks the required fields and ranges of every record.
func Validate(records []store.SKURecord) error {
	if len(records) == 0 {
		return fmt.Errorf("catalog is empty")
	}

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		id := rec.ID()
		if id == "" {
			return fmt.Errorf("record %d: missing sku", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("record %d: duplicate sku %q", i, id)
		}
		seen[id] = struct{}{}

		if rec.VCPU < 1 {
			return fmt.Errorf("record %d (%s): vcpu must be at least 1", i, id)
		}

		mem := rec.Memory()
		if mem == nil {
			return fmt.Errorf("record %d (%s): missing ram_gb", i, id)
		}
		if *mem < 0 {
			return fmt.Errorf("record %d (%s): ram_gb must not be negative", i, id)
		}

		if rec.PricePerHour == nil && rec.PricePerMonth == nil {
			return fmt.Errorf("record %d (%s): missing price_per_hour or price_per_month", i, id)
		}
		if (rec.PricePerHour != nil && *rec.PricePerHour < 0) || (rec.PricePerMonth != nil && *rec.PricePerMonth < 0) {
			return fmt.Errorf("record %d (%s): price must not be negative", i, id)
		}
	}

	return nil
}
