package cost

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/models/domain"
)

const secondsPerMonth = 3600 * 24 * 30

// UnitRates are the flat monthly rates of a catalog-backed target.
type UnitRates struct {
	StoragePerGBMonth float64
	TransferPerGB     float64
	NetworkDivisor    float64 // MB per GB used when converting sustained Mbps to monthly GB
	BackupPerGBMonth  float64
}

var defaultUnitRates = map[string]UnitRates{
	// EBS gp3, data transfer out, S3 standard
	domain.TargetAWS: {StoragePerGBMonth: 0.08, TransferPerGB: 0.09, NetworkDivisor: 1000, BackupPerGBMonth: 0.023},
	// Standard SSD managed disk, internet egress, LRS blob
	domain.TargetAzure: {StoragePerGBMonth: 0.075, TransferPerGB: 0.087, NetworkDivisor: 1024, BackupPerGBMonth: 0.0224},
	// pd-balanced, premium tier egress, snapshot storage
	domain.TargetGCP: {StoragePerGBMonth: 0.10, TransferPerGB: 0.12, NetworkDivisor: 1000, BackupPerGBMonth: 0.026},
}

func DefaultUnitRates(provider string) (UnitRates, bool) {
	r, ok := defaultUnitRates[provider]
	return r, ok
}

// MonthlyTransferGB converts a sustained throughput into the data moved in a 30 day month.
func (r UnitRates) MonthlyTransferGB(mbps float64) float64 {
	return mbps * secondsPerMonth / 8 / r.NetworkDivisor
}

func (r UnitRates) Validate() error {
	if r.NetworkDivisor <= 0 {
		return fmt.Errorf("network divisor must be positive, got %v", r.NetworkDivisor)
	}
	if r.StoragePerGBMonth < 0 || r.TransferPerGB < 0 || r.BackupPerGBMonth < 0 {
		return fmt.Errorf("unit rates must not be negative")
	}
	return nil
}

// TCOParams are the assumptions of the owned-infrastructure cost formula.
type TCOParams struct {
	AmortizationYears  float64 `ini:"amortization_years"`
	RedundancyFactor   float64 `ini:"redundancy_factor"`
	PowerRatePerKWh    float64 `ini:"power_rate_per_kwh"`
	PUE                float64 `ini:"pue"`
	CapexPerVCPU       float64 `ini:"capex_per_vcpu"`
	CapexPerGBRAM      float64 `ini:"capex_per_gb_ram"`
	CapexPerGBStorage  float64 `ini:"capex_per_gb_storage"`
	WattsPerVCPU       float64 `ini:"watts_per_vcpu"`
	WattsPerGBRAM      float64 `ini:"watts_per_gb_ram"`
	WattsPerGBStorage  float64 `ini:"watts_per_gb_storage"`
	OverheadFraction   float64 `ini:"overhead_fraction"`
	NetworkRatePerMbps float64 `ini:"network_rate_per_mbps"`
	BackupRatePerGB    float64 `ini:"backup_rate_per_gb"`
	// RealUtilization divides the requested capacity to provision headroom. 1 disables it.
	RealUtilization float64 `ini:"real_utilization"`
	// TargetUtilization is informational only and never enters the formula.
	TargetUtilization float64 `ini:"target_utilization"`
}

func DefaultOnPremParams() TCOParams {
	return TCOParams{
		AmortizationYears:  3,
		RedundancyFactor:   1.5,
		PowerRatePerKWh:    0.12,
		PUE:                1.5,
		CapexPerVCPU:       400,
		CapexPerGBRAM:      30,
		CapexPerGBStorage:  0.08,
		WattsPerVCPU:       10,
		WattsPerGBRAM:      0.5,
		WattsPerGBStorage:  0.1,
		OverheadFraction:   0.10,
		NetworkRatePerMbps: 0.02,
		BackupRatePerGB:    0.02,
		RealUtilization:    1,
	}
}

func DefaultKubernetesParams() TCOParams {
	p := DefaultOnPremParams()
	p.OverheadFraction = 0.15
	p.NetworkRatePerMbps = 0.04
	p.RealUtilization = 0.45
	p.TargetUtilization = 0.65
	return p
}

func (p TCOParams) Validate() error {
	if p.AmortizationYears <= 0 {
		return fmt.Errorf("amortization_years must be positive, got %v", p.AmortizationYears)
	}
	if p.RealUtilization <= 0 || p.RealUtilization > 1 {
		return fmt.Errorf("real_utilization must be in (0, 1], got %v", p.RealUtilization)
	}

	for name, v := range map[string]float64{
		"redundancy_factor":     p.RedundancyFactor,
		"power_rate_per_kwh":    p.PowerRatePerKWh,
		"pue":                   p.PUE,
		"capex_per_vcpu":        p.CapexPerVCPU,
		"capex_per_gb_ram":      p.CapexPerGBRAM,
		"capex_per_gb_storage":  p.CapexPerGBStorage,
		"watts_per_vcpu":        p.WattsPerVCPU,
		"watts_per_gb_ram":      p.WattsPerGBRAM,
		"watts_per_gb_storage":  p.WattsPerGBStorage,
		"overhead_fraction":     p.OverheadFraction,
		"network_rate_per_mbps": p.NetworkRatePerMbps,
		"backup_rate_per_gb":    p.BackupRatePerGB,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, v)
		}
	}
	return nil
}
