package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/de-tools/tco-atlas/pkg/adapters"
	"github.com/de-tools/tco-atlas/pkg/models/api"
	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/tco-atlas/pkg/services/pricesync"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb/history"
	"github.com/spf13/cobra"
)

var ErrNoSyncer = errors.New("price sync requires catalogs.aws.path to be configured")

func NewPricesCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Refresh AWS catalog prices and inspect past refreshes",
	}
	cmd.AddCommand(newPricesSyncCmd(load))
	cmd.AddCommand(newPricesHistoryCmd(load, reporter))
	return cmd
}

type PricesSyncCmd struct {
	writeBack bool
	location  string
	source    string
	load      Loader
}

func newPricesSyncCmd(load Loader) *cobra.Command {
	sc := &PricesSyncCmd{load: load}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch current on-demand prices for every SKU of the AWS catalog",
		RunE:  sc.run,
	}

	cmd.Flags().BoolVar(&sc.writeBack, "write-back", false, "Write refreshed prices into the catalog file (default from price_sync.write_back when enabled)")
	cmd.Flags().StringVar(&sc.location, "location", "", "AWS region code or location name (default from config)")
	cmd.Flags().StringVar(&sc.source, "source", "", "Price source: public or api (default from config)")

	return cmd
}

func (sc *PricesSyncCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := sc.load(ctx, app.Options{Source: sc.source})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Syncer == nil {
		return ErrNoSyncer
	}

	var prices map[string]*float64
	// Without overrides a configured schedule runs now with its own options.
	if a.Scheduler != nil && !cmd.Flags().Changed("write-back") && !cmd.Flags().Changed("location") {
		prices, err = a.Scheduler.RunNow(ctx)
	} else {
		prices, err = a.Syncer.Sync(ctx, pricesync.SyncOptions{
			WriteBack: sc.writeBack,
			Location:  sc.location,
		})
	}
	if err != nil {
		return fmt.Errorf("price sync failed: %w", err)
	}

	skus := make([]string, 0, len(prices))
	priced := 0
	for sku, p := range prices {
		skus = append(skus, sku)
		if p != nil {
			priced++
		}
	}
	sort.Strings(skus)

	out := cmd.OutOrStdout()
	for _, sku := range skus {
		if p := prices[sku]; p != nil {
			fmt.Fprintf(out, "%s\t%.6f\n", sku, *p)
		} else {
			fmt.Fprintf(out, "%s\tnot found\n", sku)
		}
	}
	fmt.Fprintf(out, "priced %d of %d SKUs\n", priced, len(prices))
	return nil
}

type PricesHistoryCmd struct {
	limit    int
	sku      string
	load     Loader
	reporter *export.Reporter
}

func newPricesHistoryCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	hc := &PricesHistoryCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past price refresh runs, or the price history of one SKU",
		RunE:  hc.run,
	}

	cmd.Flags().IntVar(&hc.limit, "limit", history.DefaultLimit, "Maximum number of entries")
	cmd.Flags().StringVar(&hc.sku, "sku", "", "Show the recorded prices of this SKU instead of runs")

	return cmd
}

func (hc *PricesHistoryCmd) run(cmd *cobra.Command, _ []string) error {
	if hc.limit < 1 {
		return fmt.Errorf("--limit must be a positive integer")
	}

	ctx := cmd.Context()
	a, err := hc.load(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Syncer == nil {
		return ErrNoSyncer
	}

	if hc.sku != "" {
		points, err := a.Syncer.SKUHistory(ctx, hc.sku, hc.limit)
		if err != nil {
			return fmt.Errorf("failed to read price history: %w", err)
		}
		response := make([]api.PricePoint, 0, len(points))
		for _, p := range points {
			response = append(response, adapters.MapPricePointDomainToApi(p))
		}
		return hc.reporter.JSON(response)
	}

	runs, err := a.Syncer.History(ctx, hc.limit)
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}
	response := make([]api.SyncRun, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapSyncRunDomainToApi(run))
	}
	return hc.reporter.JSON(response)
}
