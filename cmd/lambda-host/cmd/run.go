package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/lambda-bridge/config"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/host"
	"github.com/reglet-dev/lambda-bridge/infrastructure/metrics"
	"github.com/reglet-dev/lambda-bridge/infrastructure/runtimeapi"
	bridgelog "github.com/reglet-dev/lambda-bridge/log"
)

type runOptions struct {
	metricsAddr string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <artifact>",
		Short: "Serve a module as an AWS Lambda custom runtime",
		Long: `Serve a module through the AWS Lambda Runtime API.

Configuration is read from the Lambda environment (AWS_LAMBDA_RUNTIME_API,
AWS_LAMBDA_FUNCTION_NAME, _HANDLER, ...). Log records are written to stdout
as JSON lines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuntime(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runRuntime(ctx context.Context, opts *runOptions, artifact string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	logger := bridgelog.Install(bridgelog.WithLevel(cfg.SlogLevel()))

	promReg := prometheus.NewRegistry()
	collector := metrics.NewCollector(promReg)
	if err := collector.Register(); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("bridge: metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	mod, release, err := loadModule(ctx, artifact)
	if err != nil {
		return err
	}
	defer release()

	client := runtimeapi.NewClient(cfg.RuntimeAPI)
	loop := runtimeapi.NewLoop(client, &observedModule{Module: mod, collector: collector}, cfg, runtimeapi.WithLogger(logger))
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("bridge: runtime stopped")
	return nil
}

// observedModule records every invocation of a module in a metrics collector.
type observedModule struct {
	*host.Module
	collector *metrics.Collector
}

func (m *observedModule) Invoke(ctx context.Context, name string, event any, hostObj ports.HostObject) (any, error) {
	done := m.collector.Track(name)
	out, err := m.Module.Invoke(ctx, name, event, hostObj)
	done(err)
	return out, err
}
