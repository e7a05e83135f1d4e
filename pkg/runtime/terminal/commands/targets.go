package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/tco-atlas/pkg/runtime/app"
	"github.com/spf13/cobra"
)

func NewTargetsCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the deployment targets priced by the calculator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(a.Calculator.Targets(), "\n"))
			return nil
		},
	}
}
