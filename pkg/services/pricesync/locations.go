package pricesync

import (
	"strings"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

const DefaultRegion = "us-east-1"

// Location pairs a region code with the human readable name the offer files filter on.
type Location struct {
	Region string
	Name   string
}

var regionNames = map[string]string{
	"us-east-1":      "US East (N. Virginia)",
	"us-east-2":      "US East (Ohio)",
	"us-west-1":      "US West (N. California)",
	"us-west-2":      "US West (Oregon)",
	"ca-central-1":   "Canada (Central)",
	"sa-east-1":      "South America (Sao Paulo)",
	"eu-west-1":      "EU (Ireland)",
	"eu-west-2":      "EU (London)",
	"eu-west-3":      "EU (Paris)",
	"eu-central-1":   "EU (Frankfurt)",
	"eu-north-1":     "EU (Stockholm)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
}

// ResolveLocation accepts a region code or a location name. Empty means DefaultRegion.
func ResolveLocation(location string) (Location, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultRegion
	}

	if name, ok := regionNames[strings.ToLower(location)]; ok {
		return Location{Region: strings.ToLower(location), Name: name}, nil
	}

	for region, name := range regionNames {
		if strings.EqualFold(name, location) {
			return Location{Region: region, Name: name}, nil
		}
	}

	return Location{}, domain.NewValidationError("location", "unknown AWS location "+location)
}
