package matcher

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

// CatalogSource yields the catalog snapshot current at call time.
type CatalogSource interface {
	Current() *domain.Catalog
}

type Matcher struct {
	catalogs CatalogSource
	config   Config
}

func New(catalogs CatalogSource, config Config) (*Matcher, error) {
	if catalogs == nil {
		return nil, fmt.Errorf("catalog source cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{catalogs: catalogs, config: config}, nil
}

// Select picks the cheapest SKU that fits cpu and ram, narrowing by workload
// shape, and falls back according to the configured policy when nothing fits.
func (m *Matcher) Select(cpu int, ram float64) (domain.SelectedInstance, error) {
	snapshot := m.catalogs.Current()
	if snapshot == nil || len(snapshot.SKUs) == 0 {
		return domain.SelectedInstance{}, fmt.Errorf("%w: catalog is empty", domain.ErrNoInstanceAvailable)
	}
	skus := snapshot.SKUs

	candidates := filter(skus, func(s domain.SKU) bool {
		return s.VCPU >= cpu && s.RAMGB >= ram
	})
	if len(candidates) == 0 {
		candidates = filter(skus, func(s domain.SKU) bool {
			return s.VCPU >= cpu || s.RAMGB >= ram
		})
	}

	if len(candidates) == 0 {
		sku := largest(skus)
		count := 1
		if m.config.Fallback == FallbackScale {
			count = scaleCount(cpu, sku.VCPU)
		}
		return newSelection(sku, count, cpu, ram, true), nil
	}

	candidates = narrow(candidates, m.config.priorities(workloadRatio(cpu, ram)))
	sku := cheapest(candidates)

	count := 1
	if m.config.Fallback == FallbackScale && sku.VCPU < cpu {
		count = scaleCount(cpu, sku.VCPU)
	}
	return newSelection(sku, count, cpu, ram, false), nil
}

func workloadRatio(cpu int, ram float64) float64 {
	if cpu <= 0 {
		return 0
	}
	return ram / float64(cpu)
}

// narrow returns the first non-empty category subset, or the candidates unchanged.
func narrow(candidates []domain.SKU, priorities []domain.Category) []domain.SKU {
	for _, category := range priorities {
		subset := filter(candidates, func(s domain.SKU) bool {
			return s.Category == category
		})
		if len(subset) > 0 {
			return subset
		}
	}
	return candidates
}

// cheapest keeps the earliest SKU among equal prices.
func cheapest(skus []domain.SKU) domain.SKU {
	best := skus[0]
	for _, s := range skus[1:] {
		if s.MonthlyPrice() < best.MonthlyPrice() {
			best = s
		}
	}
	return best
}

// largest maximizes (vcpu, ram) lexicographically, keeping the earliest on ties.
func largest(skus []domain.SKU) domain.SKU {
	best := skus[0]
	for _, s := range skus[1:] {
		if s.VCPU > best.VCPU || (s.VCPU == best.VCPU && s.RAMGB > best.RAMGB) {
			best = s
		}
	}
	return best
}

func scaleCount(cpu, vcpu int) int {
	if vcpu <= 0 || cpu <= vcpu {
		return 1
	}
	return (cpu + vcpu - 1) / vcpu
}

func filter(skus []domain.SKU, keep func(domain.SKU) bool) []domain.SKU {
	out := make([]domain.SKU, 0, len(skus))
	for _, s := range skus {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func newSelection(sku domain.SKU, count, cpu int, ram float64, fallback bool) domain.SelectedInstance {
	return domain.SelectedInstance{
		SKU:            sku.ID,
		VCPU:           sku.VCPU,
		RAMGB:          sku.RAMGB,
		Category:       sku.Category,
		Description:    sku.Description,
		Count:          count,
		PricePerMonth:  sku.MonthlyPrice() * float64(count),
		RequirementMet: count*sku.VCPU >= cpu && float64(count)*sku.RAMGB >= ram,
		Fallback:       fallback,
	}
}
