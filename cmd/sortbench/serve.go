package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/weiihann/sortbench/server"
)

func (a *app) newServeCmd() *cobra.Command {
	var (
		sim  simFlags
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve benchmarks over HTTP",
		Long: `Serve POST /api/benchmark, which generates and benchmarks a fresh
dataset per request and returns the results as JSON, and GET /, which
renders the same results as charts. Value and growth bounds come from the
profile and flags; counts and seed come from each request.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			sim.apply(cmd.Flags(), &cfg.Simulation)

			// Count flags set the per-request defaults.
			flags := cmd.Flags()
			if flags.Changed("months") {
				cfg.Server.Months = cfg.Simulation.Months
			}
			if flags.Changed("days") {
				cfg.Server.Days = cfg.Simulation.Days
			}
			if flags.Changed("start-count") {
				cfg.Server.StartCount = cfg.Simulation.StartCount
			}
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}

			if err := cfg.Simulation.Validate(); err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg.Server, cfg.Simulation, a.logger).ListenAndServe(ctx)
		},
	}

	sim.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", server.DefaultConfig().Addr,
		"Listen address")

	return cmd
}
