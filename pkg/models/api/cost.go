package api

import "time"

type CalculateRequest struct {
	CPU     *int     `json:"cpu" validate:"required,gte=0"`
	RAM     *float64 `json:"ram" validate:"required,gte=0"`
	Storage *float64 `json:"storage" validate:"required,gte=0"`
	Network *float64 `json:"network" validate:"required,gte=0"`
	Backup  *float64 `json:"backup" validate:"required,gte=0"`
}

type SelectedInstance struct {
	Type           string  `json:"type"`
	VCPU           int     `json:"vcpu"`
	MemoryGB       float64 `json:"memory_gb"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	Count          int     `json:"count"`
	PricePerMonth  float64 `json:"price_per_month"`
	RequirementMet bool    `json:"requirement_met"`
}

type CostBreakdown struct {
	Provider         string             `json:"provider"`
	Total            float64            `json:"total"`
	Currency         string             `json:"currency"`
	Breakdown        map[string]float64 `json:"breakdown"`
	SelectedInstance *SelectedInstance  `json:"selected_instance,omitempty"`
	Assumptions      string             `json:"assumptions,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type SKU struct {
	SKU           string  `json:"sku"`
	Family        string  `json:"family,omitempty"`
	Category      string  `json:"category"`
	VCPU          int     `json:"vcpu"`
	RAMGB         float64 `json:"ram_gb"`
	PricePerMonth float64 `json:"price_per_month"`
	Description   string  `json:"description,omitempty"`
}

type Catalog struct {
	Provider string    `json:"provider"`
	Location string    `json:"location"`
	LoadedAt time.Time `json:"loaded_at"`
	SKUs     []SKU     `json:"skus"`
}
