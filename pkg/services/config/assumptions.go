package config

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/services/cost"
	"gopkg.in/ini.v1"
)

const (
	SectionOnPrem     = "onprem"
	SectionKubernetes = "kubernetes"
)

// Assumptions are the parameters of the owned-infrastructure targets.
type Assumptions struct {
	OnPrem     cost.TCOParams
	Kubernetes cost.TCOParams
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		OnPrem:     cost.DefaultOnPremParams(),
		Kubernetes: cost.DefaultKubernetesParams(),
	}
}

// LoadAssumptions overlays the keys of an ini profile onto the defaults. Missing
// sections or keys keep their default value. An empty path returns the defaults.
func LoadAssumptions(path string) (Assumptions, error) {
	a := DefaultAssumptions()
	if path == "" {
		return a, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return Assumptions{}, fmt.Errorf("failed to read assumptions file: %w", err)
	}

	for name, params := range map[string]*cost.TCOParams{
		SectionOnPrem:     &a.OnPrem,
		SectionKubernetes: &a.Kubernetes,
	} {
		section, err := f.GetSection(name)
		if err != nil {
			continue
		}
		if err := section.StrictMapTo(params); err != nil {
			return Assumptions{}, fmt.Errorf("failed to parse [%s] assumptions: %w", name, err)
		}
		if err := params.Validate(); err != nil {
			return Assumptions{}, fmt.Errorf("invalid [%s] assumptions: %w", name, err)
		}
	}

	return a, nil
}
