package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/lambda-bridge/application/adapter"
	"github.com/reglet-dev/lambda-bridge/domain/ports"
	"github.com/reglet-dev/lambda-bridge/internal/invocation"
)

// Middleware wraps an InvokeFunc to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next InvokeFunc) InvokeFunc

// Option is a functional option for configuring a Registry.
type Option func(*registryBuilder)

// WithHandler registers fn under name.
func WithHandler(name string, fn adapter.HandlerFunc) Option {
	return WithEntry(Entry{Name: name, Handler: fn})
}

// WithEntry registers a handler together with its description and schemas.
func WithEntry(e Entry) Option {
	return func(b *registryBuilder) {
		if err := b.addEntry(e); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) Option {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithModuleName overrides the module name (default "liblambda").
func WithModuleName(name string) Option {
	return func(b *registryBuilder) {
		if name == "" {
			b.errors = append(b.errors, fmt.Errorf("module name cannot be empty"))
			return
		}
		b.module = name
	}
}

// WithLogger sets the logger handed to every adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(b *registryBuilder) {
		b.logger = logger
	}
}

// LoggingMiddleware returns a middleware that logs every invocation with its
// handler name, outcome and duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, event any, host ports.HostObject) (any, error) {
			l := logger
			if l == nil {
				l = slog.Default()
			}
			name := invocation.Handler(ctx)
			start := time.Now()
			l.DebugContext(ctx, "bridge: invoking handler", "handler", name)
			out, err := next(ctx, event, host)
			if err != nil {
				l.InfoContext(ctx, "bridge: handler failed", "handler", name, "duration", time.Since(start), "error", err)
			} else {
				l.DebugContext(ctx, "bridge: handler completed", "handler", name, "duration", time.Since(start))
			}
			return out, err
		}
	}
}
