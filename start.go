package bridge

import (
	"context"

	"github.com/reglet-dev/lambda-bridge/application/registry"
)

// Start serves fn as the module's default handler, "liblambda.handler".
func Start(fn HandlerFunc, opts ...registry.Option) error {
	reg, err := registry.Default(fn, opts...)
	if err != nil {
		return err
	}
	return StartRegistry(reg)
}

// StartRegistry serves every handler in reg. It returns when the runtime
// shuts down or fails to initialize.
func StartRegistry(reg *registry.Registry) error {
	return StartRegistryContext(context.Background(), reg)
}
