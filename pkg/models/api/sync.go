package api

import "time"

type SyncRequest struct {
	WriteBack bool   `json:"write_back"`
	Location  string `json:"location"`
}

type SyncResponse struct {
	Total  int                 `json:"total"`
	Priced int                 `json:"priced"`
	Prices map[string]*float64 `json:"prices"`
}

type SyncRun struct {
	ID         string     `json:"id"`
	Provider   string     `json:"provider"`
	Source     string     `json:"source"`
	Location   string     `json:"location"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	SKUsTotal  int        `json:"skus_total"`
	SKUsPriced int        `json:"skus_priced"`
	WriteBack  bool       `json:"write_back"`
	Error      *string    `json:"error,omitempty"`
}

type PricePoint struct {
	RunID        string    `json:"run_id"`
	SKU          string    `json:"sku"`
	PricePerHour *float64  `json:"price_per_hour"`
	ObservedAt   time.Time `json:"observed_at"`
}
