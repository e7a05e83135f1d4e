package cost

import (
	"context"
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

// Breakdown categories of catalog-backed targets.
const (
	CategoryCompute = "compute"
	CategoryStorage = "storage"
	CategoryNetwork = "network"
	CategoryBackup  = "backup"
)

// CatalogModel prices compute from an instance catalog and the rest from flat unit rates.
type CatalogModel struct {
	target   string
	selector InstanceSelector
	rates    UnitRates
}

func NewCatalogModel(target string, selector InstanceSelector, rates UnitRates) (*CatalogModel, error) {
	if target == "" {
		return nil, fmt.Errorf("target name cannot be empty")
	}
	if selector == nil {
		return nil, fmt.Errorf("instance selector cannot be nil")
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid unit rates for %s: %w", target, err)
	}

	return &CatalogModel{target: target, selector: selector, rates: rates}, nil
}

func (m *CatalogModel) Target() string {
	return m.target
}

func (m *CatalogModel) Estimate(_ context.Context, req domain.ResourceRequest) (*domain.CostBreakdown, error) {
	selected, err := m.selector.Select(req.CPU, req.RAM)
	if err != nil {
		return nil, fmt.Errorf("select instance for %s: %w", m.target, err)
	}

	b := newBreakdown(m.target, []domain.LineItem{
		{Category: CategoryCompute, Amount: money(selected.PricePerMonth)},
		{Category: CategoryStorage, Amount: money(req.Storage * m.rates.StoragePerGBMonth)},
		{Category: CategoryNetwork, Amount: money(m.rates.MonthlyTransferGB(req.Network) * m.rates.TransferPerGB)},
		{Category: CategoryBackup, Amount: money(req.Backup * m.rates.BackupPerGBMonth)},
	})

	selected.PricePerMonth = money(selected.PricePerMonth).InexactFloat64()
	b.SelectedInstance = &selected
	return b, nil
}
