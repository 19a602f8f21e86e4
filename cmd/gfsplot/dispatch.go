package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/gfs-plot/internal/adapter/httpadapter"
	"github.com/couchcryptid/gfs-plot/internal/observability"
	"github.com/couchcryptid/gfs-plot/internal/pipeline"
)

func newDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Plot every product, region and cycle in the namelist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			return runDispatch(cmd.Context(), e)
		},
	}
}

func runDispatch(ctx context.Context, e *env) error {
	nl, err := e.namelist()
	if err != nil {
		return err
	}
	d, err := e.domains()
	if err != nil {
		return err
	}
	jobs, err := nl.Jobs(d)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	runner, closeFn, err := e.runner(metrics)
	if err != nil {
		return err
	}
	defer closeFn()

	dispatcher := pipeline.NewDispatcher(runner, e.cfg.ImageDir, e.cfg.Workers, e.logger, metrics)

	if e.cfg.HTTPAddr != "" {
		srvCtx, stopSrv := context.WithCancel(ctx)
		srv := httpadapter.NewServer(e.cfg.HTTPAddr, dispatcher, reg, e.logger)
		done := srv.Serve(srvCtx, e.cfg.ShutdownTimeout)
		defer func() {
			stopSrv()
			if err := <-done; err != nil {
				e.logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	report := dispatcher.Dispatch(ctx, jobs)

	if e.cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.ShutdownTimeout)
		if err := observability.Push(pushCtx, e.cfg.PushgatewayURL, observability.PushJob, reg); err != nil {
			e.logger.Error("metrics push failed", "error", err)
		}
		cancel()
	}

	if report.Err != nil {
		return fmt.Errorf("%d of %d jobs failed: %w", report.Failed, report.Total, report.Err)
	}
	return nil
}
