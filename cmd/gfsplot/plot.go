package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/gfs-plot/internal/domain"
	"github.com/couchcryptid/gfs-plot/internal/observability"
	"github.com/couchcryptid/gfs-plot/internal/pipeline"
)

func newPlotCmd() *cobra.Command {
	var (
		ro       regionOpts
		initStr  string
		level    int
		lag      time.Duration
		forecast []int
	)
	cmd := &cobra.Command{
		Use:   "plot PRODUCT",
		Short: "Plot one product for one region and cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			region, err := ro.resolve(e)
			if err != nil {
				return err
			}

			init := domain.LatestCycle(lag)
			if initStr != "" {
				if init, err = domain.ParseInitTime(initStr); err != nil {
					return err
				}
			}

			if !cmd.Flags().Changed("fore") {
				if forecast, err = e.forecastHours(); err != nil {
					return err
				}
			}

			job := domain.Job{
				Product:  args[0],
				Level:    level,
				Init:     init,
				Region:   region.Name,
				Box:      region.Box,
				Forecast: forecast,
			}
			if err := pipeline.Validate(job); err != nil {
				return err
			}

			runner, closeFn, err := e.runner(observability.NewMetrics(prometheus.NewRegistry()))
			if err != nil {
				return err
			}
			defer closeFn()

			paths, err := runner.Run(cmd.Context(), job)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}

	cmd.Flags().AddFlagSet(ro.flags())
	cmd.MarkFlagsMutuallyExclusive("region", "bbox")
	cmd.MarkFlagsOneRequired("region", "bbox")
	cmd.Flags().StringVar(&initStr, "init", "", "model cycle as YYYYMMDDHH (default: latest available cycle)")
	cmd.Flags().IntVar(&level, "level", 0, "pressure level in hPa, for multi-level products")
	cmd.Flags().DurationVar(&lag, "lag", 4*time.Hour, "data availability delay used to pick the latest cycle")
	cmd.Flags().IntSliceVar(&forecast, "fore", nil, "forecast hours held by the forecast file, in file order (default: namelist fore)")
	return cmd
}
