package store

import "time"

type SyncRun struct {
	ID         string
	Provider   string
	Source     string
	Location   string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	SKUsTotal  int
	SKUsPriced int
	WriteBack  bool
	Error      *string
}

type PriceRecord struct {
	RunID        string
	SKU          string
	PricePerHour *float64
	ObservedAt   time.Time
}
