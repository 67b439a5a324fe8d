package bridge

import (
	"github.com/reglet-dev/lambda-bridge/application/adapter"
	"github.com/reglet-dev/lambda-bridge/application/contextview"
	"github.com/reglet-dev/lambda-bridge/application/registry"
	"github.com/reglet-dev/lambda-bridge/domain/value"
)

// Version is the bridge version reported in module manifests.
const Version = registry.Version

// Value is the JSON-compatible value handed to and returned by handlers.
type Value = value.Value

// Context is the read-only view of the host's invocation context.
type Context = contextview.View

// HandlerFunc is the signature of a handler.
type HandlerFunc = adapter.HandlerFunc
