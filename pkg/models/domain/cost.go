package domain

import "github.com/shopspring/decimal"

const CurrencyUSD = "USD"

// Deployment targets priced by the calculator.
const (
	TargetAWS        = "aws"
	TargetAzure      = "azure"
	TargetGCP        = "gcp"
	TargetKubernetes = "kubernetes"
	TargetOnPrem     = "onprem"
)

// ResourceRequest is the normalized input of every cost model.
// Fields are validated as non-negative before they reach the core.
type ResourceRequest struct {
	CPU     int     // vCPU
	RAM     float64 // GB
	Storage float64 // GB
	Network float64 // sustained Mbps
	Backup  float64 // GB
}

type SelectedInstance struct {
	SKU            string
	VCPU           int
	RAMGB          float64
	Category       Category
	Description    string
	Count          int
	PricePerMonth  float64 // for the whole count
	RequirementMet bool
	Fallback       bool
}

type LineItem struct {
	Category string // compute, storage, network, backup; cpu/ram/storage for formula targets
	Amount   decimal.Decimal
}

type CostBreakdown struct {
	Provider         string
	Total            decimal.Decimal
	Currency         string
	Items            []LineItem
	SelectedInstance *SelectedInstance
	Assumptions      string
}

// Amount returns the amount of the named line item.
func (b CostBreakdown) Amount(category string) (decimal.Decimal, bool) {
	for _, item := range b.Items {
		if item.Category == category {
			return item.Amount, true
		}
	}
	return decimal.Zero, false
}
