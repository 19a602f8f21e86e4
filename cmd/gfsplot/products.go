package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/gfs-plot/internal/diagnostic"
)

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the plottable products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUCT\tLEVELS\tANALYSIS")
			for _, p := range diagnostic.Products() {
				levels := "single"
				if p.NeedsLevel {
					levels = "multi"
				}
				fmt.Fprintf(w, "%s\t%s\t%t\n", p.Key, levels, p.HasAnalysis)
			}
			return w.Flush()
		},
	}
}
