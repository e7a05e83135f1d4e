package domain

import "time"

type SyncStatus string

const (
	SyncStatusRunning  SyncStatus = "running"
	SyncStatusFinished SyncStatus = "finished"
	SyncStatusFailed   SyncStatus = "failed"
)

// SyncRun describes one execution of the price refresher.
type SyncRun struct {
	ID         string
	Provider   string
	Source     string
	Location   string
	Status     SyncStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	SKUsTotal  int
	SKUsPriced int
	WriteBack  bool
	Error      *string
}

type PricePoint struct {
	RunID        string
	SKU          string
	PricePerHour *float64
	ObservedAt   time.Time
}
