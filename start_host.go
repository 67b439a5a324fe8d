//go:build !wasip1

package bridge

import (
	"context"
	"fmt"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/config"
	"github.com/reglet-dev/lambda-bridge/infrastructure/runtimeapi"
	bridgelog "github.com/reglet-dev/lambda-bridge/log"
)

// StartRegistryContext runs the Lambda Runtime API loop for reg until ctx is
// cancelled. Configuration is read from the Lambda environment and log
// records are written to stdout as JSON lines.
func StartRegistryContext(ctx context.Context, reg *registry.Registry) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	logger := bridgelog.Install(bridgelog.WithLevel(cfg.SlogLevel()))

	client := runtimeapi.NewClient(cfg.RuntimeAPI, runtimeapi.WithUserAgent("lambda-bridge/"+Version))
	loop := runtimeapi.NewLoop(client, reg, cfg, runtimeapi.WithLogger(logger))
	return loop.Run(ctx)
}
