//go:build wasip1

package bridge

import (
	"context"

	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/guest"
	bridgelog "github.com/reglet-dev/lambda-bridge/log"
)

// StartRegistryContext registers reg with the guest exports. Log records are
// forwarded to the host. It returns immediately; the host drives every
// invocation.
func StartRegistryContext(_ context.Context, reg *registry.Registry) error {
	bridgelog.Install()
	guest.Register(reg)
	return nil
}
