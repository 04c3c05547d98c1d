package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flowtrace/services/flow-svc/internal/examples"
)

func newExamplesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "examples",
		Short: "List the built-in sample networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVERTICES\tEDGES\tSOURCE\tSINK\tMAX FLOW\tDESCRIPTION")
			for _, ex := range examples.All() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
					ex.Name,
					ex.Matrix.Size(),
					ex.Matrix.EdgeCount(),
					ex.Source,
					ex.Sink,
					ex.ExpectedMaxFlow,
					ex.Description,
				)
			}
			return tw.Flush()
		},
	}
}
