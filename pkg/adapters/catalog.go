package adapters

import (
	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/models/store"
)

// MapSKURecordStoreToDomain expects a record that already passed catalog validation.
func MapSKURecordStoreToDomain(rec store.SKURecord) domain.SKU {
	sku := domain.SKU{
		ID:          rec.ID(),
		Family:      rec.Family,
		Category:    domain.ParseCategory(rec.Category),
		VCPU:        rec.VCPU,
		Description: rec.Description,
	}
	if mem := rec.Memory(); mem != nil {
		sku.RAMGB = *mem
	}

	switch {
	case rec.PricePerHour != nil:
		sku.Price = *rec.PricePerHour
		sku.PriceUnit = domain.PriceUnitHour
	case rec.PricePerMonth != nil:
		sku.Price = *rec.PricePerMonth
		sku.PriceUnit = domain.PriceUnitMonth
	}

	return sku
}

func MapCatalogDomainToApi(c *domain.Catalog) api.Catalog {
	resp := api.Catalog{
		Provider: c.Provider,
		Location: c.Location,
		LoadedAt: c.LoadedAt,
		SKUs:     make([]api.SKU, 0, len(c.SKUs)),
	}
	for _, sku := range c.SKUs {
		resp.SKUs = append(resp.SKUs, api.SKU{
			SKU:           sku.ID,
			Family:        sku.Family,
			Category:      string(sku.Category),
			VCPU:          sku.VCPU,
			RAMGB:         sku.RAMGB,
			PricePerMonth: sku.MonthlyPrice(),
			Description:   sku.Description,
		})
	}
	return resp
}
