package cost

import (
	"context"
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

// Breakdown categories of formula-backed targets. The resource names label
// capex, power and overhead respectively.
const (
	CategoryCapex    = "cpu"
	CategoryPower    = "ram"
	CategoryOverhead = "storage"
)

const hoursPerPowerMonth = 24 * 30

// TCOModel prices owned capacity as amortized capex plus power plus an operations overhead.
type TCOModel struct {
	target string
	params TCOParams
}

func NewTCOModel(target string, params TCOParams) (*TCOModel, error) {
	if target == "" {
		return nil, fmt.Errorf("target name cannot be empty")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumptions for %s: %w", target, err)
	}
	return &TCOModel{target: target, params: params}, nil
}

func (m *TCOModel) Target() string {
	return m.target
}

func (m *TCOModel) Params() TCOParams {
	return m.params
}

func (m *TCOModel) Estimate(_ context.Context, req domain.ResourceRequest) (*domain.CostBreakdown, error) {
	p := m.params

	cpu := float64(req.CPU) / p.RealUtilization
	ram := req.RAM / p.RealUtilization
	storage := req.Storage / p.RealUtilization

	capex := (cpu*p.CapexPerVCPU + ram*p.CapexPerGBRAM + storage*p.CapexPerGBStorage) /
		(p.AmortizationYears * 12) * p.RedundancyFactor

	watts := cpu*p.WattsPerVCPU + ram*p.WattsPerGBRAM + storage*p.WattsPerGBStorage
	power := watts / 1000 * hoursPerPowerMonth * p.PUE * p.PowerRatePerKWh * p.RedundancyFactor

	overhead := p.OverheadFraction * (capex + power)

	b := newBreakdown(m.target, []domain.LineItem{
		{Category: CategoryCapex, Amount: money(capex)},
		{Category: CategoryPower, Amount: money(power)},
		{Category: CategoryOverhead, Amount: money(overhead)},
		{Category: CategoryNetwork, Amount: money(req.Network * p.NetworkRatePerMbps)},
		{Category: CategoryBackup, Amount: money(req.Backup * p.BackupRatePerGB)},
	})
	b.Assumptions = m.assumptions()
	return b, nil
}

func (m *TCOModel) assumptions() string {
	p := m.params
	note := fmt.Sprintf(
		"capex amortized over %g years with %gx redundancy; power at $%g/kWh with PUE %g; %g%% operations overhead",
		p.AmortizationYears, p.RedundancyFactor, p.PowerRatePerKWh, p.PUE, p.OverheadFraction*100,
	)
	if p.RealUtilization < 1 {
		note += fmt.Sprintf("; sized for %g%% real utilization", p.RealUtilization*100)
		if p.TargetUtilization > 0 {
			note += fmt.Sprintf(" (target %g%%)", p.TargetUtilization*100)
		}
	}
	return note
}
