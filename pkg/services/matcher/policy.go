package matcher

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

// FallbackPolicy decides what happens when no SKU covers the request even partially.
type FallbackPolicy string

const (
	// FallbackLargest picks the largest SKU once and flags the requirement as unmet.
	FallbackLargest FallbackPolicy = "largest"
	// FallbackScale picks the largest SKU and adds instances until the vCPU request is covered.
	FallbackScale FallbackPolicy = "scale"
)

// Preference selects how the workload ratio narrows the candidate set.
type Preference string

const (
	// PreferenceSimple narrows to memory or compute SKUs only.
	PreferenceSimple Preference = "simple"
	// PreferencePriority walks an ordered category list for every workload shape.
	PreferencePriority Preference = "priority"
)

const (
	memoryHeavyRatio  = 6.0
	computeHeavyRatio = 3.0
)

var (
	memoryPriority   = []domain.Category{domain.CategoryMemory, domain.CategoryGeneral, domain.CategoryCompute, domain.CategoryBurstable}
	computePriority  = []domain.Category{domain.CategoryCompute, domain.CategoryGeneral, domain.CategoryBurstable, domain.CategoryMemory}
	balancedPriority = []domain.Category{domain.CategoryGeneral, domain.CategoryBurstable, domain.CategoryCompute, domain.CategoryMemory}
)

type Config struct {
	Fallback   FallbackPolicy
	Preference Preference
}

// DefaultConfig returns the matching policy used for a provider unless configured otherwise.
func DefaultConfig(provider string) Config {
	cfg := Config{Fallback: FallbackScale, Preference: PreferencePriority}
	if provider == domain.TargetAWS {
		cfg.Preference = PreferenceSimple
	}
	return cfg
}

func (c Config) Validate() error {
	switch c.Fallback {
	case FallbackLargest, FallbackScale:
	default:
		return fmt.Errorf("unknown fallback policy %q", c.Fallback)
	}

	switch c.Preference {
	case PreferenceSimple, PreferencePriority:
	default:
		return fmt.Errorf("unknown category preference %q", c.Preference)
	}
	return nil
}

// priorities returns the category order to try for the given ram/cpu ratio.
func (c Config) priorities(ratio float64) []domain.Category {
	switch {
	case ratio > memoryHeavyRatio:
		if c.Preference == PreferenceSimple {
			return memoryPriority[:1]
		}
		return memoryPriority
	case ratio < computeHeavyRatio:
		if c.Preference == PreferenceSimple {
			return computePriority[:1]
		}
		return computePriority
	default:
		if c.Preference == PreferenceSimple {
			return nil
		}
		return balancedPriority
	}
}
