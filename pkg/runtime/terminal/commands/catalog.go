package commands

import (
	"fmt"

	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/de-tools/tco-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type CatalogListCmd struct {
	provider string
	output   string
	load     Loader
	reporter *export.Reporter
}

func NewCatalogCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect provider instance catalogs",
	}
	cmd.AddCommand(newCatalogListCmd(load, reporter))
	return cmd
}

func newCatalogListCmd(load Loader, reporter *export.Reporter) *cobra.Command {
	lc := &CatalogListCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the SKUs of a provider catalog",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.provider, "provider", "", "Catalog provider (aws, azure, gcp)")
	cmd.Flags().StringVarP(&lc.output, "output", "o", string(export.FormatTable), "Output format: table, json or csv")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func (lc *CatalogListCmd) run(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(lc.output)
	if err != nil {
		return err
	}

	a, err := lc.load(cmd.Context(), app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	holder, ok := a.Holders[lc.provider]
	if !ok {
		return fmt.Errorf("unknown catalog provider %q", lc.provider)
	}
	snapshot := holder.Current()

	switch format {
	case export.FormatJSON:
		return lc.reporter.JSON(export.SKURows(snapshot))
	case export.FormatCSV:
		return lc.reporter.CSV(export.SKURows(snapshot))
	default:
		return lc.reporter.Catalog(snapshot)
	}
}
