// Package cmd implements the lambda-host commands.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/lambda-bridge/host"
	bridgelog "github.com/reglet-dev/lambda-bridge/log"
)

type rootOptions struct {
	logLevel string
	output   string
}

// NewRootCommand builds the lambda-host command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "lambda-host",
		Short: "Run bridge handlers compiled to WASM",
		Long: `lambda-host loads a bridge module compiled with GOOS=wasip1 and invokes its handlers.

Examples:
  # Invoke the default handler with an event file
  lambda-host invoke function.wasm --event event.json

  # Invoke a named handler with a context fixture and a 10s budget
  lambda-host invoke function.wasm liblambda.orders --event order.yaml --context ctx.yaml --timeout 10s

  # List the handlers a module exports
  lambda-host describe function.wasm -o yaml

  # Serve the module as an AWS Lambda custom runtime
  lambda-host run function.wasm --metrics-addr :9090`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			bridgelog.Install(
				bridgelog.WithWriter(cmd.ErrOrStderr()),
				bridgelog.WithLevel(bridgelog.ParseLevel(opts.logLevel)),
			)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format (json, yaml, table)")

	root.AddCommand(
		newInvokeCommand(opts),
		newDescribeCommand(opts),
		newRunCommand(),
	)
	return root
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// loadModule creates an executor and loads the artifact into it. The returned
// function releases both.
func loadModule(ctx context.Context, artifact string, opts ...host.Option) (*host.Module, func(), error) {
	opts = append([]host.Option{
		host.WithLogger(slog.Default()),
		host.WithStderr(os.Stderr),
	}, opts...)

	exec, err := host.NewExecutor(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	mod, err := exec.LoadFile(ctx, artifact)
	if err != nil {
		_ = exec.Close(ctx)
		return nil, nil, err
	}
	return mod, func() { _ = exec.Close(ctx) }, nil
}
