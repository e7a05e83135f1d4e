package adapters

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

func MapCalculateRequestApiToDomain(req api.CalculateRequest) domain.ResourceRequest {
	return domain.ResourceRequest{
		CPU:     derefInt(req.CPU),
		RAM:     derefFloat(req.RAM),
		Storage: derefFloat(req.Storage),
		Network: derefFloat(req.Network),
		Backup:  derefFloat(req.Backup),
	}
}

func MapCostBreakdownDomainToApi(b domain.CostBreakdown) api.CostBreakdown {
	breakdown := make(map[string]float64, len(b.Items))
	for _, item := range b.Items {
		breakdown[item.Category] = item.Amount.InexactFloat64()
	}

	return api.CostBreakdown{
		Provider:         b.Provider,
		Total:            b.Total.InexactFloat64(),
		Currency:         b.Currency,
		Breakdown:        breakdown,
		SelectedInstance: MapSelectedInstanceDomainToApi(b.SelectedInstance),
		Assumptions:      b.Assumptions,
	}
}

func MapCostBreakdownsDomainToApi(results map[string]domain.CostBreakdown) map[string]api.CostBreakdown {
	response := make(map[string]api.CostBreakdown, len(results))
	for target, b := range results {
		response[target] = MapCostBreakdownDomainToApi(b)
	}
	return response
}

func MapSelectedInstanceDomainToApi(s *domain.SelectedInstance) *api.SelectedInstance {
	if s == nil {
		return nil
	}

	return &api.SelectedInstance{
		Type:           s.SKU,
		VCPU:           s.VCPU,
		MemoryGB:       s.RAMGB,
		Category:       string(s.Category),
		Description:    s.Description,
		Count:          s.Count,
		PricePerMonth:  s.PricePerMonth,
		RequirementMet: s.RequirementMet,
	}
}

// MapCostBreakdownsToReport renders results in the given target order.
func MapCostBreakdownsToReport(
	req domain.ResourceRequest,
	targets []string,
	results map[string]domain.CostBreakdown,
) *domain.Report {
	report := &domain.Report{
		Title:    "Monthly cost estimate",
		Request:  req,
		Currency: domain.CurrencyUSD,
	}

	for _, target := range targets {
		b, ok := results[target]
		if !ok {
			continue
		}

		section := domain.ReportSection{
			Title:       target,
			Total:       b.Total.InexactFloat64(),
			Summary:     map[string]interface{}{},
			Assumptions: b.Assumptions,
		}
		if s := b.SelectedInstance; s != nil {
			section.Summary["instance"] = fmt.Sprintf("%d x %s (%d vCPU, %g GB)", s.Count, s.SKU, s.VCPU, s.RAMGB)
			if !s.RequirementMet {
				section.Summary["warning"] = "requested capacity not fully met"
			}
		}
		for _, item := range b.Items {
			section.Details = append(section.Details, domain.ReportDetail{
				Name:  item.Category,
				Value: item.Amount.StringFixed(2),
				Unit:  b.Currency,
			})
		}
		report.Sections = append(report.Sections, section)
	}

	return report
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
