package domain

import (
	"strings"
	"time"
)

const HoursPerMonth = 730

type Category string

const (
	CategoryCompute   Category = "compute"
	CategoryMemory    Category = "memory"
	CategoryGeneral   Category = "general"
	CategoryBurstable Category = "burstable"
)

// ParseCategory normalizes a catalog tag. Empty tags are treated as general purpose.
func ParseCategory(tag string) Category {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return CategoryGeneral
	}
	return Category(tag)
}

type PriceUnit string

const (
	PriceUnitHour  PriceUnit = "hour"
	PriceUnitMonth PriceUnit = "month"
)

type SKU struct {
	ID          string
	Family      string
	Category    Category
	VCPU        int
	RAMGB       float64
	Price       float64
	PriceUnit   PriceUnit
	Description string
}

func (s SKU) MonthlyPrice() float64 {
	if s.PriceUnit == PriceUnitMonth {
		return s.Price
	}
	return s.Price * HoursPerMonth
}

// Catalog is an ordered, read-only snapshot of a provider's instance shapes.
type Catalog struct {
	Provider string
	Location string
	LoadedAt time.Time
	SKUs     []SKU
}
