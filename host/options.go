package host

import (
	"io"
	"log/slog"

	wazeroadapter "github.com/reglet-dev/lambda-bridge/infrastructure/wazero"
)

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

type executorConfig struct {
	logger     *slog.Logger
	stdout     io.Writer
	stderr     io.Writer
	moduleOpts []wazeroadapter.ModuleOption
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		stdout: io.Discard,
		stderr: io.Discard,
	}
}

// WithLogger sets the logger that receives guest log records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		c.logger = logger
		c.moduleOpts = append(c.moduleOpts, wazeroadapter.WithLogger(logger))
	}
}

// WithStdout routes the guest's stdout to w.
func WithStdout(w io.Writer) Option {
	return func(c *executorConfig) {
		c.stdout = w
	}
}

// WithStderr routes the guest's stderr to w.
func WithStderr(w io.Writer) Option {
	return func(c *executorConfig) {
		c.stderr = w
	}
}

// WithHostModuleOptions passes options to the lambda_host module.
func WithHostModuleOptions(opts ...wazeroadapter.ModuleOption) Option {
	return func(c *executorConfig) {
		c.moduleOpts = append(c.moduleOpts, opts...)
	}
}
