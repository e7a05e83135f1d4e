package commands

import (
	"fmt"
	"math"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/models/domain"
	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type EstimateCmd struct {
	cpu      int
	ram      float64
	storage  float64
	network  float64
	backup   float64
	targets  []string
	output   string
	load     Loader
	reporter *export.Reporter
}

func NewEstimateCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	ec := &EstimateCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the monthly cost of a workload on every target",
		RunE:  ec.run,
	}

	cmd.Flags().IntVar(&ec.cpu, "cpu", 0, "Number of vCPUs")
	cmd.Flags().Float64Var(&ec.ram, "ram", 0, "Memory in GB")
	cmd.Flags().Float64Var(&ec.storage, "storage", 0, "Block storage in GB")
	cmd.Flags().Float64Var(&ec.network, "network", 0, "Sustained network throughput in Mbps")
	cmd.Flags().Float64Var(&ec.backup, "backup", 0, "Backup storage in GB")
	cmd.Flags().StringSliceVar(&ec.targets, "target", nil, "Limit the output to these targets (repeatable)")
	cmd.Flags().StringVarP(&ec.output, "output", "o", string(export.FormatTable), "Output format: table, json or csv")

	for _, name := range []string{"cpu", "ram", "storage", "network", "backup"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (ec *EstimateCmd) request() (domain.ResourceRequest, error) {
	req := domain.ResourceRequest{
		CPU:     ec.cpu,
		RAM:     ec.ram,
		Storage: ec.storage,
		Network: ec.network,
		Backup:  ec.backup,
	}

	verr := &domain.ValidationError{Fields: map[string]string{}}
	if req.CPU < 0 {
		verr.Fields["cpu"] = "must be greater than or equal to 0"
	}
	for name, v := range map[string]float64{"ram": req.RAM, "storage": req.Storage, "network": req.Network, "backup": req.Backup} {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			verr.Fields[name] = "must be finite"
		case v < 0:
			verr.Fields[name] = "must be greater than or equal to 0"
		}
	}
	if len(verr.Fields) > 0 {
		return req, verr
	}
	return req, nil
}

func (ec *EstimateCmd) run(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(ec.output)
	if err != nil {
		return err
	}

	req, err := ec.request()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := ec.load(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	targets, err := selectTargets(a.Calculator.Targets(), ec.targets)
	if err != nil {
		return err
	}

	results, err := a.Calculator.Calculate(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to estimate costs: %w", err)
	}

	switch format {
	case export.FormatJSON:
		response := adapters.MapCostBreakdownsDomainToApi(results)
		for target := range response {
			if !contains(targets, target) {
				delete(response, target)
			}
		}
		return ec.reporter.JSON(response)
	case export.FormatCSV:
		return ec.reporter.CSV(export.LineItemRows(targets, results))
	default:
		return ec.reporter.Handle(adapters.MapCostBreakdownsToReport(req, targets, results))
	}
}

// selectTargets keeps the requested targets in registry order.
func selectTargets(known, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return known, nil
	}

	for _, t := range requested {
		if !contains(known, t) {
			return nil, fmt.Errorf("unknown target %q. Supported targets: %v", t, known)
		}
	}

	selected := make([]string, 0, len(requested))
	for _, t := range known {
		if contains(requested, t) {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
