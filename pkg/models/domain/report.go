package domain

import "time"

// Report represents a rendered estimate across targets
type Report struct {
	Title       string
	GeneratedAt time.Time
	Request     ResourceRequest
	Sections    []ReportSection
	Currency    string
}

// ReportSection represents one target in the report
type ReportSection struct {
	Title       string
	Total       float64
	Summary     map[string]interface{}
	Details     []ReportDetail
	Assumptions string
}

// ReportDetail represents a single line item within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
