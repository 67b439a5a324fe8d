// Package adapter wraps one user handler so that it can be called with
// host-native event and context objects.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/reglet-dev/lambda-bridge/application/codec"
	"github.com/reglet-dev/lambda-bridge/application/contextview"
	"github.com/reglet-dev/lambda-bridge/application/translator"
	domainerrors "github.com/reglet-dev/lambda-bridge/domain/errors"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/domain/value"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// HandlerFunc is the only handler shape the bridge accepts.
type HandlerFunc func(event value.Value, lc *contextview.View) (value.Value, error)

// Adapter runs a HandlerFunc against host-native inputs.
type Adapter struct {
	fn     HandlerFunc
	logger *slog.Logger
	name   string
}

// Option configures an Adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	logger *slog.Logger
	name   string
}

func defaultAdapterConfig() adapterConfig {
	return adapterConfig{
		name: "handler",
	}
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(c *adapterConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger. By default slog.Default() is used at call time.
func WithLogger(logger *slog.Logger) Option {
	return func(c *adapterConfig) {
		c.logger = logger
	}
}

// New returns an Adapter for fn.
func New(fn HandlerFunc, opts ...Option) *Adapter {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{fn: fn, logger: cfg.logger, name: cfg.name}
}

// Name returns the adapter's name.
func (a *Adapter) Name() string {
	return a.name
}

// Invoke decodes event, builds the context view from host, calls the handler
// once and encodes its result. Every failure is returned as a
// *entities.HostException; the handler is not called when decoding or context
// construction fails.
//
// The view handed to the handler is released when Invoke returns.
func (a *Adapter) Invoke(ctx context.Context, event any, host ports.HostObject) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := a.log()

	ev, err := codec.Decode(event)
	if err != nil {
		logger.DebugContext(ctx, "bridge: event decode failed", "handler", a.name, "error", err)
		return nil, translator.Translate(err)
	}

	view, err := contextview.New(host)
	if err != nil {
		logger.DebugContext(ctx, "bridge: context construction failed", "handler", a.name, "error", err)
		return nil, translator.Translate(err)
	}
	defer view.Release()

	ctx = invocation.WithRequestID(ctx, view.AWSRequestID())
	invocation.SetCurrent(ctx)
	defer invocation.Reset()

	result, err := a.call(ev, view)
	if err != nil {
		if _, ok := err.(*domainerrors.PanicError); ok {
			logger.ErrorContext(ctx, "bridge: handler panic", "handler", a.name, "request_id", view.AWSRequestID(), "error", err)
		} else {
			logger.DebugContext(ctx, "bridge: handler returned error", "handler", a.name, "request_id", view.AWSRequestID(), "error", err)
		}
		return nil, translator.Translate(err)
	}

	native, err := codec.Encode(result)
	if err != nil {
		logger.DebugContext(ctx, "bridge: result encode failed", "handler", a.name, "error", err)
		return nil, translator.Translate(err)
	}
	return native, nil
}

// call runs the handler, converting a returned error into a HandlerError and
// a panic into a PanicError.
func (a *Adapter) call(ev value.Value, view *contextview.View) (result value.Value, err error) {
	if a.fn == nil {
		return value.Value{}, fmt.Errorf("handler %q is nil", a.name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = &domainerrors.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	result, err = a.fn(ev, view)
	if err != nil {
		return value.Value{}, &domainerrors.HandlerError{Err: err}
	}
	return result, nil
}

func (a *Adapter) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}
