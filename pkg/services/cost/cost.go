package cost

import (
	"context"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Model prices a resource request for one deployment target
type Model interface {
	// Target returns the deployment target name, e.g. aws or onprem
	Target() string
	// Estimate returns the monthly cost of the request with a per-category breakdown
	Estimate(ctx context.Context, req domain.ResourceRequest) (*domain.CostBreakdown, error)
}

// InstanceSelector picks the instance shape backing a catalog-priced target
type InstanceSelector interface {
	Select(cpu int, ram float64) (domain.SelectedInstance, error)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// newBreakdown totals the rounded line items, so the items always sum to the total.
func newBreakdown(provider string, items []domain.LineItem) *domain.CostBreakdown {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}

	return &domain.CostBreakdown{
		Provider: provider,
		Total:    total.Round(2),
		Currency: domain.CurrencyUSD,
		Items:    items,
	}
}
