package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/de-tools/tco-atlas/pkg/store/storage"
	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimals kept for cached hourly prices.
const PricePrecision = 6

// Store persists the refresher's price cache: a flat {sku: hourly price or null} document.
type Store interface {
	Save(ctx context.Context, prices map[string]*float64) error
	Load(ctx context.Context) (map[string]*float64, error)
}

type cacheStore struct {
	backend storage.Storage
	path    string
}

func NewStore(backend storage.Storage, path string) (Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("storage backend is nil")
	}
	if path == "" {
		return nil, fmt.Errorf("price cache path is required")
	}
	return &cacheStore{backend: backend, path: path}, nil
}

func (s *cacheStore) Save(ctx context.Context, prices map[string]*float64) error {
	rounded := make(map[string]*float64, len(prices))
	for sku, price := range prices {
		rounded[sku] = RoundPrice(price)
	}

	data, err := json.MarshalIndent(rounded, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal price cache: %w", err)
	}

	if err := s.backend.Write(ctx, s.path, append(data, '\n')); err != nil {
		return fmt.Errorf("write price cache: %w", err)
	}
	return nil
}

// Load returns an empty mapping when no cache was written yet.
func (s *cacheStore) Load(ctx context.Context) (map[string]*float64, error) {
	data, err := s.backend.Read(ctx, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*float64{}, nil
		}
		return nil, fmt.Errorf("read price cache: %w", err)
	}

	prices := map[string]*float64{}
	if err := json.Unmarshal(data, &prices); err != nil {
		return nil, fmt.Errorf("decode price cache: %w", err)
	}
	return prices, nil
}

// RoundPrice rounds to PricePrecision decimals, keeping nil as nil.
func RoundPrice(price *float64) *float64 {
	if price == nil {
		return nil
	}
	v := decimal.NewFromFloat(*price).Round(PricePrecision).InexactFloat64()
	return &v
}
