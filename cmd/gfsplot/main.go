// Command gfsplot draws GFS diagnostic charts.
//
// Usage:
//
//	gfsplot plot mslp --region WA --init 2024071500
//	gfsplot plot pv --level 300 --bbox=24,-20,0,24
//	gfsplot dispatch
//	gfsplot basemap --region WA
//	gfsplot products
//
// Paths, worker counts, image sizes and the optional HTTP, Pushgateway and
// Kafka endpoints come from the environment; see internal/config.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		code = 1
	}
	stop()
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gfsplot",
		Short:        "Plot diagnostics from GFS analysis and forecast files",
		SilenceUsage: true,
	}
	root.AddCommand(
		newPlotCmd(),
		newDispatchCmd(),
		newBasemapCmd(),
		newProductsCmd(),
	)
	return root
}
